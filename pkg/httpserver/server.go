package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/docstate/pkg/logger"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

type config struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
	closers         []closer
}

// Server runs an http.Server until its context is canceled or the process
// receives SIGINT or SIGTERM, then drains connections and releases the
// registered closers.
type Server struct {
	cfg   *config
	ready chan struct{}
	once  sync.Once

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := &config{
		addr:            ":8080",
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Discard()
	}
	return &Server{cfg: cfg, ready: make(chan struct{})}
}

// Ready is closed once the server accepts connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address while running, the configured one otherwise.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.cfg.addr
}

// Run serves handler and blocks until shutdown.
// Listen failures are joined to ErrStart; closers still run.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	log := s.cfg.logger.With(logger.Component("httpserver"))

	srv, ln, err := s.listen(ctx, handler)
	if err != nil {
		if !errors.Is(err, ErrAlreadyRunning) {
			s.stop(ctx, log)
		}
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.InfoContext(ctx, "http server started", slog.String("addr", ln.Addr().String()))
	close(s.ready)

	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var runErr error
	select {
	case <-sigCtx.Done():
		log.InfoContext(ctx, "shutting down http server")
		s.stop(ctx, log)
		runErr = <-errCh
	case runErr = <-errCh:
		if !errors.Is(runErr, http.ErrServerClosed) {
			s.stop(ctx, log)
		}
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	log.InfoContext(ctx, "http server stopped")
	return nil
}

func (s *Server) listen(ctx context.Context, handler http.Handler) (*http.Server, net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.srv != nil:
		return nil, nil, errors.Join(ErrStart, ErrAlreadyRunning)
	case s.closed:
		return nil, nil, errors.Join(ErrStart, http.ErrServerClosed)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.addr)
	if err != nil {
		return nil, nil, errors.Join(ErrStart, err)
	}

	s.ln = ln
	s.srv = &http.Server{
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
	}
	return s.srv, ln, nil
}

func (s *Server) stop(ctx context.Context, log *slog.Logger) {
	if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
		log.ErrorContext(ctx, "graceful shutdown failed", logger.Error(err))
	}
}

// Shutdown drains the server and runs the closers within the shutdown
// timeout. Repeated calls are no-ops. Failures are joined to ErrShutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.closed = true
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()

		if srv != nil {
			if serr := srv.Shutdown(ctx); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				err = serr
			}
		}
		for i := len(s.cfg.closers) - 1; i >= 0; i-- {
			c := s.cfg.closers[i]
			if cerr := c.fn(ctx); cerr != nil {
				s.cfg.logger.WarnContext(ctx, "closer failed", slog.String("closer", c.name), logger.Error(cerr))
				err = errors.Join(err, fmt.Errorf("%s: %w", c.name, cerr))
			}
		}
	})

	if err != nil {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
