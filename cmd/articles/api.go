package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/docstate/pkg/logger"
	"github.com/dmitrymomot/docstate/pkg/statehttp"
	"github.com/dmitrymomot/docstate/pkg/statemachine"
	"github.com/dmitrymomot/docstate/pkg/validator"
)

type createArticleRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

func (r createArticleRequest) validate() error {
	return validator.Apply(
		validator.MaxLen("title", r.Title, 200),
		validator.Required("author", r.Author),
	)
}

// articlesRouter adds document creation to the machine routes.
func articlesRouter(m *statemachine.Machine[*Article], store statemachine.Saver[*Article], log *slog.Logger) chi.Router {
	r := statehttp.NewRouter(m, statehttp.WithLogger(log))

	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		var in createArticleRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20)).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, &statehttp.ErrorDetail{Code: "bad_request", Message: err.Error()})
			return
		}
		if err := in.validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, &statehttp.ErrorDetail{
				Code:    "validation_error",
				Message: err.Error(),
				Details: validator.ExtractValidationErrors(err).Map(),
			})
			return
		}

		article := m.Init(&Article{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Title:     in.Title,
			Body:      in.Body,
			Author:    in.Author,
			CreatedAt: time.Now().UTC(),
		})
		if err := store.Save(req.Context(), article); err != nil {
			log.ErrorContext(req.Context(), "failed to create article", logger.Error(err))
			writeError(w, http.StatusInternalServerError, &statehttp.ErrorDetail{
				Code:    statehttp.CodePersistenceFailed,
				Message: http.StatusText(http.StatusInternalServerError),
			})
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Location", path.Join(req.URL.Path, article.ID))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(statehttp.JSONResponse{Data: article})
	})

	return r
}

func writeError(w http.ResponseWriter, status int, detail *statehttp.ErrorDetail) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(statehttp.JSONResponse{Error: detail})
}
