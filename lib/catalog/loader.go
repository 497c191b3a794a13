package catalog

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	gojson "github.com/goccy/go-json"
)

// RawEntry is one record of the source dataset before normalization.
type RawEntry struct {
	Title     string   `json:"title"`
	Year      int      `json:"year"`
	Extract   string   `json:"extract"`
	Thumbnail string   `json:"thumbnail"`
	Genres    []string `json:"genres"`
	Cast      []string `json:"cast"`
}

// DatasetError reports a dataset that could not be read or parsed. It is
// fatal at startup: no partial catalog is ever served.
type DatasetError struct {
	Path string
	Err  error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset %s: %v", e.Path, e.Err)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// Bounds for the synthetic metrics the dataset does not supply. Only the
// ranges matter; the exact distribution is not a compatibility requirement.
const (
	maxVoteAverage = 10.0
	maxVoteCount   = 1000
	maxPopularity  = 100.0
	minRuntime     = 60
	maxRuntime     = 120
)

// Load normalizes raw entries into a genre registry and a catalog index.
// Movie ids are the 1-based position among all raw entries, valid or not, so
// ids are stable within a load but not across dataset reorderings. Entries
// missing a title, year, or thumbnail are dropped after id and genre
// assignment. rng feeds the synthetic metrics; pass a fixed-seed source for
// reproducible catalogs.
func Load(entries []RawEntry, rng *rand.Rand) (*GenreRegistry, *Index) {
	registry := NewGenreRegistry()
	movies := make([]Movie, 0, len(entries))

	for i, e := range entries {
		genreIDs := make([]int, len(e.Genres))
		genres := make([]Genre, len(e.Genres))
		for j, name := range e.Genres {
			id := registry.IDFor(name)
			genreIDs[j] = id
			genres[j] = Genre{ID: id, Name: name}
		}

		cast := make([]CastMember, len(e.Cast))
		for j, name := range e.Cast {
			cast[j] = CastMember{
				ID:        j + 1,
				Name:      name,
				Character: fmt.Sprintf("Character %d", j+1),
			}
		}

		m := Movie{
			ID:          i + 1,
			Title:       e.Title,
			Overview:    e.Extract,
			VoteAverage: rng.Float64() * maxVoteAverage,
			VoteCount:   rng.Intn(maxVoteCount),
			Popularity:  rng.Float64() * maxPopularity,
			GenreIDs:    genreIDs,
			Runtime:     minRuntime + rng.Intn(maxRuntime-minRuntime),
			Genres:      genres,
			Credits:     Credits{Cast: cast, Crew: []CrewMember{}},
		}
		if e.Year != 0 {
			m.ReleaseDate = fmt.Sprintf("%d-01-01", e.Year)
		}
		if e.Thumbnail != "" {
			thumb := e.Thumbnail
			m.PosterPath = &thumb
		}

		if m.Title == "" || m.ReleaseDate == "" || m.PosterPath == nil {
			continue
		}
		movies = append(movies, m)
	}

	return registry, NewIndex(movies)
}

// LoadFile reads, validates, and loads the dataset at path. A seed of 0
// picks a time-based seed, matching the source behavior of fresh synthetic
// metrics on every start.
func LoadFile(path string, seed int64, logger *slog.Logger) (*GenreRegistry, *Index, error) {
	raw, err := os.ReadFile(path) // #nosec G304 - path comes from operator config
	if err != nil {
		return nil, nil, &DatasetError{Path: path, Err: err}
	}

	if err := validateDataset(raw); err != nil {
		return nil, nil, &DatasetError{Path: path, Err: err}
	}

	var entries []RawEntry
	if err := gojson.Unmarshal(raw, &entries); err != nil {
		return nil, nil, &DatasetError{Path: path, Err: err}
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	registry, index := Load(entries, rand.New(rand.NewSource(seed)))

	logger.Info("Loaded movie catalog",
		slog.String("path", path),
		slog.Int("raw_entries", len(entries)),
		slog.Int("movies", index.Len()),
		slog.Int("genres", registry.Len()))

	return registry, index, nil
}
