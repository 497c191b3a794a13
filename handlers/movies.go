package handlers

import (
	"errors"
	"net/http"

	"github.com/moviepick/moviepick/lib/validation"
)

func (a *API) handleGenres(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.genres.All())
}

func (a *API) handlePopularMovies(w http.ResponseWriter, r *http.Request) {
	page := validation.ParsePage(r)
	a.writeJSON(w, http.StatusOK, a.query.Popular(page))
}

func (a *API) handleTopRatedMovies(w http.ResponseWriter, r *http.Request) {
	page := validation.ParsePage(r)
	a.writeJSON(w, http.StatusOK, a.query.TopRated(page))
}

func (a *API) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if q == "" {
		validation.WriteError(w, errors.New("Query parameter is required"), http.StatusBadRequest)
		return
	}

	page := validation.ParsePage(r)
	a.writeJSON(w, http.StatusOK, a.query.Search(q, page))
}

func (a *API) handleMoviesByGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := urlInt(r, "genreId")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid genre ID"), http.StatusBadRequest)
		return
	}

	page := validation.ParsePage(r)
	a.writeJSON(w, http.StatusOK, a.query.ByGenre(genreID, page))
}

func (a *API) handleMovieDetails(w http.ResponseWriter, r *http.Request) {
	movieID, err := urlInt(r, "id")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid movie ID"), http.StatusBadRequest)
		return
	}

	movie, ok := a.query.Details(movieID)
	if !ok {
		a.writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}
	a.writeJSON(w, http.StatusOK, movie)
}

func (a *API) handleSimilarMovies(w http.ResponseWriter, r *http.Request) {
	movieID, err := urlInt(r, "id")
	if err != nil {
		validation.WriteError(w, errors.New("Invalid movie ID"), http.StatusBadRequest)
		return
	}

	a.writeJSON(w, http.StatusOK, a.query.Similar(movieID))
}
