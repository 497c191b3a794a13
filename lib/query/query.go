// Package query implements the catalog retrieval operations: popularity and
// rating rankings, text search, genre filtering, and genre-overlap
// similarity. Every operation is a pure read over the immutable catalog
// index, so the engine is safe for concurrent use.
package query

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/moviepick/moviepick/lib/catalog"
)

// PageSize is the fixed pagination window shared by every listing operation.
const PageSize = 20

// Engine answers catalog queries. It holds no mutable state.
type Engine struct {
	index  *catalog.Index
	logger *slog.Logger
}

// New returns an engine over the given catalog index.
func New(index *catalog.Index, logger *slog.Logger) *Engine {
	return &Engine{index: index, logger: logger}
}

// Popular returns the page-th window of movies sorted by popularity
// descending. Ties keep catalog order so results are deterministic.
func (e *Engine) Popular(page int) []catalog.Movie {
	sorted := sortedCopy(e.index.All(), func(a, b catalog.Movie) bool {
		return a.Popularity > b.Popularity
	})
	return Paginate(sorted, page)
}

// TopRated returns the page-th window of movies sorted by vote average
// descending, with the same stable tie-break as Popular.
func (e *Engine) TopRated(page int) []catalog.Movie {
	sorted := sortedCopy(e.index.All(), func(a, b catalog.Movie) bool {
		return a.VoteAverage > b.VoteAverage
	})
	return Paginate(sorted, page)
}

// Search returns movies whose title or overview contains the query,
// case-insensitively, in catalog order. A blank query returns no results
// rather than an error.
func (e *Engine) Search(query string, page int) []catalog.Movie {
	if strings.TrimSpace(query) == "" {
		return []catalog.Movie{}
	}

	needle := strings.ToLower(query)
	var matches []catalog.Movie
	for _, m := range e.index.All() {
		if strings.Contains(strings.ToLower(m.Title), needle) ||
			strings.Contains(strings.ToLower(m.Overview), needle) {
			matches = append(matches, m)
		}
	}
	return Paginate(matches, page)
}

// ByGenre returns movies carrying the given genre id, in catalog order.
func (e *Engine) ByGenre(genreID, page int) []catalog.Movie {
	var matches []catalog.Movie
	for _, m := range e.index.All() {
		if m.HasGenre(genreID) {
			matches = append(matches, m)
		}
	}
	return Paginate(matches, page)
}

// Details looks up a single movie by id.
func (e *Engine) Details(movieID int) (catalog.Movie, bool) {
	return e.index.ByID(movieID)
}

// Similar returns up to PageSize movies sharing at least one genre with the
// given movie, ordered by shared-genre count descending with catalog-order
// ties. An unknown id yields an empty result, not an error: there is nothing
// to be similar to.
func (e *Engine) Similar(movieID int) []catalog.Movie {
	target, ok := e.index.ByID(movieID)
	if !ok {
		return []catalog.Movie{}
	}

	candidates := []catalog.Movie{}
	for _, m := range e.index.All() {
		if m.ID != movieID && target.SharedGenres(m) > 0 {
			candidates = append(candidates, m)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return target.SharedGenres(candidates[i]) > target.SharedGenres(candidates[j])
	})

	if len(candidates) > PageSize {
		candidates = candidates[:PageSize]
	}
	return candidates
}

// Paginate slices the 1-based page-th PageSize window out of movies.
// Out-of-range pages return an empty slice.
func Paginate(movies []catalog.Movie, page int) []catalog.Movie {
	if page < 1 {
		return []catalog.Movie{}
	}
	start := (page - 1) * PageSize
	if start >= len(movies) {
		return []catalog.Movie{}
	}
	end := start + PageSize
	if end > len(movies) {
		end = len(movies)
	}
	return movies[start:end]
}

// sortedCopy stable-sorts a copy of movies so the shared index slice is
// never reordered.
func sortedCopy(movies []catalog.Movie, less func(a, b catalog.Movie) bool) []catalog.Movie {
	sorted := make([]catalog.Movie, len(movies))
	copy(sorted, movies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}
