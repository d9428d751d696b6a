package statehttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/docstate/pkg/logger"
	"github.com/dmitrymomot/docstate/pkg/requestid"
	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

// Option configures the router.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	middleware []func(http.Handler) http.Handler
}

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMiddleware appends middleware after the built-in request id, recoverer
// and access log middleware.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, mw...)
	}
}

type handler[D statemachine.Document] struct {
	machine *statemachine.Machine[D]
	logger  *slog.Logger
}

// NewRouter exposes m over HTTP:
//
//	GET  /states                           machine description
//	GET  /{id}                             document and its available transitions
//	POST /{id}/transitions/{transition}    apply a transition
//
// Mount it under the collection path, e.g. r.Mount("/articles", ...).
func NewRouter[D statemachine.Document](m *statemachine.Machine[D], opts ...Option) chi.Router {
	o := &options{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	h := &handler[D]{
		machine: m,
		logger:  o.logger.With(logger.Component("statehttp"), logger.Machine(m.Name())),
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.Recoverer, accessLog(h.logger))
	r.Use(o.middleware...)

	r.Get("/states", h.describe)
	r.Get("/{id}", h.get)
	r.Post("/{id}/transitions/{transition}", h.fire)

	return r
}

// Description is the body of GET /states.
type Description struct {
	Machine     string              `json:"machine"`
	Transitions []string            `json:"transitions"`
	Schema      statemachine.Schema `json:"schema"`
}

func (h *handler[D]) describe(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, JSONResponse{Data: Description{
		Machine:     h.machine.Name(),
		Transitions: h.machine.TransitionNames(),
		Schema:      h.machine.Schema(),
	}})
}

func (h *handler[D]) get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.machine.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, JSONResponse{
		Data: doc,
		Meta: map[string]any{"available": availableOrEmpty(h.machine.Available(doc))},
	})
}

func (h *handler[D]) fire(w http.ResponseWriter, r *http.Request) {
	doc, err := h.machine.FireByID(r.Context(), chi.URLParam(r, "transition"), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, JSONResponse{
		Data: doc,
		Meta: map[string]any{"available": availableOrEmpty(h.machine.Available(doc))},
	})
}

func (h *handler[D]) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorDetail(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", logger.Error(err))
	}
	h.respond(w, r, status, JSONResponse{Error: detail})
}

func (h *handler[D]) respond(w http.ResponseWriter, r *http.Request, status int, body JSONResponse) {
	if err := writeJSON(w, status, body); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write response", logger.Error(err))
	}
}

func availableOrEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.DebugContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
