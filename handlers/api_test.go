package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviepick/moviepick/lib/auth"
	"github.com/moviepick/moviepick/lib/db"
	"github.com/moviepick/moviepick/lib/mail"
	"github.com/moviepick/moviepick/lib/query"
	"github.com/moviepick/moviepick/lib/recommend"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

// newTestServer wires the full API over the fixture catalog and a throwaway
// SQLite database.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := testLogger()

	gdb, err := db.Open(filepath.Join(t.TempDir(), "moviepick.db"), logger)
	require.NoError(t, err)

	registry, index := fixtureCatalog()
	api := New(
		gdb,
		registry,
		query.New(index, logger),
		recommend.New(index, logger),
		auth.New("test-secret", time.Hour),
		mail.New("", "", "", logger),
		logger,
	)
	return &testServer{t: t, handler: api.Routes()}
}

func (s *testServer) do(method, path string, body any, session *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := gojson.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.AddCookie(session)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// register creates a user and returns their session cookie.
func (s *testServer) register(username string) *http.Cookie {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"password": "secret123",
	}, nil)
	require.Equal(s.t, http.StatusCreated, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	s.t.Fatal("register response set no session cookie")
	return nil
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestRegisterLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	session := s.register("alice")

	rec := s.do(http.MethodGet, "/auth/me", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeMap(t, rec)["username"])

	// Duplicate username is rejected.
	rec = s.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "alice",
		"password": "another1",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"message": "Username already exists"}`, rec.Body.String())

	// Wrong password is rejected without revealing which part failed.
	rec = s.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message": "Invalid credentials"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "ab",
		"password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/user/preferences", "/user/ratings", "/user/watchlist", "/user/recommendations"} {
		rec := s.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestServer(t)
	session := s.register("alice")

	// Before any save, preferences come back empty rather than 404.
	rec := s.do(http.MethodGet, "/user/preferences", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"genreIds": [], "actorIds": [], "directorIds": []}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/user/preferences", map[string]any{
		"genreIds": []int{1, 2},
	}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/user/preferences", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{float64(1), float64(2)}, decodeMap(t, rec)["genreIds"])
}

func TestRatingsRoundTrip(t *testing.T) {
	s := newTestServer(t)
	session := s.register("alice")

	rec := s.do(http.MethodPost, "/user/ratings", map[string]int{"movieId": 2, "rating": 8}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	// Upsert: rating the same movie again overwrites.
	rec = s.do(http.MethodPost, "/user/ratings", map[string]int{"movieId": 2, "rating": 4}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/user/ratings/2", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), decodeMap(t, rec)["rating"])

	rec = s.do(http.MethodGet, "/user/ratings", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	var ratings []map[string]any
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &ratings))
	assert.Len(t, ratings, 1)

	rec = s.do(http.MethodGet, "/user/ratings/99", nil, session)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message": "Rating not found"}`, rec.Body.String())

	// Out-of-range rating value is rejected.
	rec = s.do(http.MethodPost, "/user/ratings", map[string]int{"movieId": 2, "rating": 11}, session)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWatchlistRoundTrip(t *testing.T) {
	s := newTestServer(t)
	session := s.register("alice")

	rec := s.do(http.MethodGet, "/user/watchlist/check/1", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isInWatchlist": false}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/user/watchlist", map[string]int{"movieId": 1}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	firstID := decodeMap(t, rec)["id"]

	// Adding again is idempotent and returns the existing row.
	rec = s.do(http.MethodPost, "/user/watchlist", map[string]int{"movieId": 1}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, firstID, decodeMap(t, rec)["id"])

	rec = s.do(http.MethodGet, "/user/watchlist/check/1", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"isInWatchlist": true}`, rec.Body.String())

	rec = s.do(http.MethodDelete, "/user/watchlist/1", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/user/watchlist", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRecommendationsUsePreferencesAndExcludeRated(t *testing.T) {
	s := newTestServer(t)
	session := s.register("alice")

	// Prefer Drama (genre 1): movies 1 and 3 qualify, ranked by popularity.
	rec := s.do(http.MethodPost, "/user/preferences", map[string]any{"genreIds": []int{1}}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/user/recommendations", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	movies := decodeMovies(t, rec)
	require.Len(t, movies, 2)
	assert.Equal(t, 3, movies[0].ID)
	assert.Equal(t, 1, movies[1].ID)

	// Rating a movie drops it from future recommendations.
	rec = s.do(http.MethodPost, "/user/ratings", map[string]int{"movieId": 3, "rating": 9}, session)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/user/recommendations", nil, session)
	require.Equal(t, http.StatusOK, rec.Code)
	movies = decodeMovies(t, rec)
	require.Len(t, movies, 1)
	assert.Equal(t, 1, movies[0].ID)
}

func TestPlaylistLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("alice")
	other := s.register("bob")

	rec := s.do(http.MethodPost, "/playlists", map[string]any{
		"name":     "Rainy Day",
		"isPublic": false,
	}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeMap(t, rec)
	playlistID := int(created["id"].(float64))
	assert.NotEmpty(t, created["shareToken"])

	path := "/playlists/" + strconv.Itoa(playlistID)

	// Private playlists are invisible to other users and to anonymous
	// visitors, but not to the owner.
	rec = s.do(http.MethodGet, path, nil, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodGet, path, nil, owner)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Non-owners cannot modify.
	rec = s.do(http.MethodPut, path, map[string]any{"isPublic": true}, other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Publishing makes it readable by everyone.
	rec = s.do(http.MethodPut, path, map[string]any{"isPublic": true}, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/playlists/public", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var public []map[string]any
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &public))
	assert.Len(t, public, 1)

	rec = s.do(http.MethodDelete, path, nil, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, path, nil, owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaylistItems(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("alice")

	rec := s.do(http.MethodPost, "/playlists", map[string]any{"name": "Watch Order"}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	playlistID := int(decodeMap(t, rec)["id"].(float64))
	itemsPath := "/playlists/" + strconv.Itoa(playlistID) + "/items"

	rec = s.do(http.MethodPost, itemsPath, map[string]any{"movieId": 1}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	firstItemID := int(decodeMap(t, rec)["id"].(float64))

	rec = s.do(http.MethodPost, itemsPath, map[string]any{"movieId": 2, "notes": "save for later"}, owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	secondItemID := int(decodeMap(t, rec)["id"].(float64))
	assert.Equal(t, float64(1), decodeMap(t, rec)["position"])

	// Re-adding an existing movie returns the existing item, not a duplicate.
	rec = s.do(http.MethodPost, itemsPath, map[string]any{"movieId": 1}, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, firstItemID, int(decodeMap(t, rec)["id"].(float64)))

	// Reorder: second item first.
	rec = s.do(http.MethodPut, "/playlists/"+strconv.Itoa(playlistID)+"/reorder", map[string]any{
		"itemIds": []int{secondItemID, firstItemID},
	}, owner)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, itemsPath, nil, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, float64(2), items[0]["movieId"])
	assert.Equal(t, float64(1), items[1]["movieId"])

	rec = s.do(http.MethodPut, itemsPath+"/1/notes", map[string]any{"notes": "a classic"}, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a classic", decodeMap(t, rec)["notes"])

	rec = s.do(http.MethodPut, itemsPath+"/99/notes", map[string]any{"notes": "x"}, owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message": "Item not found in playlist"}`, rec.Body.String())

	rec = s.do(http.MethodDelete, itemsPath+"/2", nil, owner)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, itemsPath, nil, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	items = nil
	require.NoError(t, gojson.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestForgotAndResetPassword(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")

	// Unknown usernames get the same generic response as known ones.
	rec := s.do(http.MethodPost, "/auth/forgot-password", map[string]string{"username": "nobody"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "resetToken")

	// With no mail client configured the token comes back in the response.
	rec = s.do(http.MethodPost, "/auth/forgot-password", map[string]string{"username": "alice"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decodeMap(t, rec)["resetToken"].(string)
	require.NotEmpty(t, token)

	rec = s.do(http.MethodPost, "/auth/reset-password", map[string]string{
		"token":       "bogus",
		"newPassword": "newsecret",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message": "Invalid or expired reset token"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": "newsecret",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password no longer works, new one does.
	rec = s.do(http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "secret123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "newsecret"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Tokens are single use.
	rec = s.do(http.MethodPost, "/auth/reset-password", map[string]string{
		"token":       token,
		"newPassword": "thirdsecret",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
