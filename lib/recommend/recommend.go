// Package recommend produces the personalized movie feed. The heuristic is
// deliberately simple: filter the catalog to the user's preferred genres,
// drop movies they have already rated, and rank what remains by popularity.
// A user with no preferences gets the plain popularity ranking, which is the
// intended cold-start behavior rather than a degenerate case.
package recommend

import (
	"log/slog"
	"sort"

	"github.com/moviepick/moviepick/lib/catalog"
	"github.com/moviepick/moviepick/lib/query"
)

// IDSet is a set of integer ids at the engine boundary.
type IDSet map[int]struct{}

// NewIDSet builds a set from a list of ids, deduplicating as it goes.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports set membership.
func (s IDSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// Recommender computes personalized feeds over the catalog index.
type Recommender struct {
	index  *catalog.Index
	logger *slog.Logger
}

// New returns a recommender over the given catalog index.
func New(index *catalog.Index, logger *slog.Logger) *Recommender {
	return &Recommender{index: index, logger: logger}
}

// Recommend returns the page-th window of the personalized feed. Movies must
// share at least one genre with preferredGenreIDs (any overlap, not all)
// unless the set is empty, and movies in excludeMovieIDs are never returned.
// Results are sorted by popularity descending with catalog-order ties.
func (r *Recommender) Recommend(preferredGenreIDs, excludeMovieIDs IDSet, page int) []catalog.Movie {
	var candidates []catalog.Movie
	for _, m := range r.index.All() {
		if len(preferredGenreIDs) > 0 && !overlaps(m.GenreIDs, preferredGenreIDs) {
			continue
		}
		if excludeMovieIDs.Contains(m.ID) {
			continue
		}
		candidates = append(candidates, m)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Popularity > candidates[j].Popularity
	})

	r.logger.Debug("Computed recommendations",
		slog.Int("preferred_genres", len(preferredGenreIDs)),
		slog.Int("excluded_movies", len(excludeMovieIDs)),
		slog.Int("candidates", len(candidates)),
		slog.Int("page", page))

	return query.Paginate(candidates, page)
}

func overlaps(genreIDs []int, preferred IDSet) bool {
	for _, id := range genreIDs {
		if preferred.Contains(id) {
			return true
		}
	}
	return false
}
