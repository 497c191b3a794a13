package recommend

import (
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviepick/moviepick/lib/catalog"
	"github.com/moviepick/moviepick/lib/query"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func movie(id int, popularity float64, genreIDs ...int) catalog.Movie {
	return catalog.Movie{ID: id, Title: fmt.Sprintf("Movie %d", id), Popularity: popularity, GenreIDs: genreIDs}
}

func TestRecommendFallsBackToPopularityWithoutPreferences(t *testing.T) {
	index := catalog.NewIndex([]catalog.Movie{
		movie(1, 10, 1),
		movie(2, 90, 2),
		movie(3, 50, 3),
	})
	r := New(index, testLogger())
	e := query.New(index, testLogger())

	got := r.Recommend(NewIDSet(), NewIDSet(), 1)
	assert.Equal(t, idsOf(e.Popular(1)), idsOf(got), "no preferences degrades to the popularity ranking")
}

func TestRecommendExcludesRatedMovies(t *testing.T) {
	index := catalog.NewIndex([]catalog.Movie{
		movie(1, 10, 1),
		movie(2, 90, 2),
		movie(3, 50, 3),
	})
	r := New(index, testLogger())

	got := r.Recommend(NewIDSet(), NewIDSet(2), 1)
	assert.Equal(t, []int{3, 1}, idsOf(got))
}

func TestRecommendFiltersByGenreOverlap(t *testing.T) {
	index := catalog.NewIndex([]catalog.Movie{
		movie(1, 10, 1),
		movie(2, 90, 2),
		movie(3, 50, 1, 2),
		movie(4, 70, 3),
	})
	r := New(index, testLogger())

	got := r.Recommend(NewIDSet(1), NewIDSet(), 1)
	assert.Equal(t, []int{3, 1}, idsOf(got), "any-overlap filter, sorted by popularity")

	got = r.Recommend(NewIDSet(1, 3), NewIDSet(), 1)
	assert.Equal(t, []int{4, 3, 1}, idsOf(got), "overlap with any preferred genre qualifies")
}

func TestRecommendCombinesFilterAndExclusion(t *testing.T) {
	index := catalog.NewIndex([]catalog.Movie{
		movie(1, 10, 1),
		movie(2, 90, 1),
		movie(3, 50, 1),
	})
	r := New(index, testLogger())

	got := r.Recommend(NewIDSet(1), NewIDSet(2, 3), 1)
	assert.Equal(t, []int{1}, idsOf(got))
}

func TestRecommendPaginates(t *testing.T) {
	movies := make([]catalog.Movie, 25)
	for i := range movies {
		movies[i] = movie(i+1, float64(25-i), 1)
	}
	r := New(catalog.NewIndex(movies), testLogger())

	page1 := r.Recommend(NewIDSet(), NewIDSet(), 1)
	page2 := r.Recommend(NewIDSet(), NewIDSet(), 2)

	require.Len(t, page1, query.PageSize)
	assert.Len(t, page2, 5)
	assert.Empty(t, r.Recommend(NewIDSet(), NewIDSet(), 3))
}

func TestIDSet(t *testing.T) {
	s := NewIDSet(1, 2, 2, 3)
	assert.Len(t, s, 3)
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(4))
}

func idsOf(movies []catalog.Movie) []int {
	ids := make([]int, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return ids
}
