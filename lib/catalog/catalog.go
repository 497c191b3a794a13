// Package catalog holds the in-memory movie catalog. The catalog is built
// once at startup from a local JSON dataset and is read-only afterwards, so
// it can be shared across request goroutines without locking.
package catalog

// Genre is a (id, name) pair. Ids are small integers assigned in first-seen
// order during catalog load, starting at 1.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a credited actor. The dataset only carries names, so the id
// is positional within the movie and the character name is a placeholder.
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

// CrewMember exists for response-shape compatibility; the dataset has no
// crew information, so the list is always empty.
type CrewMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	ProfilePath *string `json:"profile_path"`
}

// Credits groups the cast and crew lists for a movie.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Movie is the canonical catalog record. VoteAverage, VoteCount, Popularity
// and Runtime are synthetic: the dataset does not supply them, so the loader
// fabricates bounded values from its random source. They are only meaningful
// for relative ranking within a single load.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
	Adult        bool    `json:"adult"`
	Runtime      int     `json:"runtime"`
	Genres       []Genre `json:"genres"`
	Credits      Credits `json:"credits"`
}

// HasGenre reports whether the movie carries the given genre id.
func (m Movie) HasGenre(genreID int) bool {
	for _, id := range m.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// SharedGenres counts how many genre ids the movie shares with other.
func (m Movie) SharedGenres(other Movie) int {
	count := 0
	for _, id := range m.GenreIDs {
		if other.HasGenre(id) {
			count++
		}
	}
	return count
}

// GenreRegistry maps genre names to stable integer ids. It is populated
// single-threaded during catalog load and never mutated afterwards.
type GenreRegistry struct {
	ids   map[string]int
	names []string
}

// NewGenreRegistry returns an empty registry.
func NewGenreRegistry() *GenreRegistry {
	return &GenreRegistry{ids: make(map[string]int)}
}

// IDFor returns the id for a genre name, assigning the next id on first
// sight. Names are case-sensitive; ids are never reused.
func (r *GenreRegistry) IDFor(name string) int {
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := len(r.names) + 1
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// All returns every known genre in first-seen order.
func (r *GenreRegistry) All() []Genre {
	genres := make([]Genre, len(r.names))
	for i, name := range r.names {
		genres[i] = Genre{ID: i + 1, Name: name}
	}
	return genres
}

// Len returns the number of registered genres.
func (r *GenreRegistry) Len() int {
	return len(r.names)
}

// Index is the ordered collection of valid movies. Order is dataset order
// restricted to valid entries. The index is never mutated after construction.
type Index struct {
	movies []Movie
	byID   map[int]int
}

// NewIndex builds an index over the given movies, preserving their order.
func NewIndex(movies []Movie) *Index {
	byID := make(map[int]int, len(movies))
	for i, m := range movies {
		byID[m.ID] = i
	}
	return &Index{movies: movies, byID: byID}
}

// All returns every movie in catalog order. Callers must not modify the
// returned slice.
func (i *Index) All() []Movie {
	return i.movies
}

// ByID looks up a movie by id. The second return value is false when the id
// is unknown (which includes entries dropped during load).
func (i *Index) ByID(id int) (Movie, bool) {
	pos, ok := i.byID[id]
	if !ok {
		return Movie{}, false
	}
	return i.movies[pos], true
}

// Len returns the number of valid movies in the catalog.
func (i *Index) Len() int {
	return len(i.movies)
}
