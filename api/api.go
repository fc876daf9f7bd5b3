package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bookshelf/books"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// handler routes HTTP requests to a books.Service.
type handler struct {
	svc *books.Service
}

// NewHandler returns the application's HTTP routes:
//
//	POST   /books      add a book
//	GET    /books/{id} fetch a book
//	PUT    /books/{id} update a book's title/author
//	DELETE /books/{id} remove a book
func NewHandler(svc *books.Service) http.Handler {
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Route("/books", func(r chi.Router) {
		r.Post("/", h.addBook)
		r.Get("/{id}", h.getBook)
		r.Put("/{id}", h.updateBook)
		r.Delete("/{id}", h.deleteBook)
	})
	return r
}

// requestLogger tags every request with a uuid so log lines from one request
// can be tied together.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info().
			Str("requestID", uuid.New().String()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("handling a request")
		next.ServeHTTP(w, r)
	})
}

// errorResponse is the JSON body for every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) getBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)

	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	b, err := h.svc.Get(id)

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (h *handler) addBook(w http.ResponseWriter, r *http.Request) {
	p, err := parsePayload(r)

	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	b, err := h.svc.Add(p)

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (h *handler) updateBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)

	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p, err := parsePayload(r)

	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	b, err := h.svc.Update(id, p)

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func (h *handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)

	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	b, err := h.svc.Delete(id)

	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// parseID reads the {id} route parameter as an unsigned 64-bit integer.
func parseID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)

	if err != nil {
		return 0, errors.New("the id must be an unsigned integer")
	}

	return id, nil
}

// parsePayload reads the request body as a book payload. Validation of the
// payload's contents belongs to the service, not here.
func parsePayload(r *http.Request) (books.Payload, error) {
	var p books.Payload

	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return books.Payload{}, errors.New("can't parse the request body as a book payload")
	}

	return p, nil
}

// writeError maps the service's two error kinds onto status codes. Anything
// else is a storage-layer failure the caller can't act on, so it becomes an
// opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var invalid *books.InvalidInputError
	var notFound *books.NotFoundError

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: invalid.Msg})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Msg})
	default:
		log.Error().Err(err).Msg("a book operation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// The status line is already gone, so all we can do is log
		log.Error().Err(err).Msg("can't encode a response body")
	}
}
