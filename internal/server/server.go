// Package server exposes the contact book over HTTP: HTML pages for browsers,
// JSON for API clients, and a /healthz probe.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dyluth/contactbook/internal/auth"
	"github.com/dyluth/contactbook/internal/views"
	"github.com/dyluth/contactbook/pkg/contact"
	"github.com/dyluth/contactbook/pkg/events"
)

// ContactStore is the storage the handlers need. *store.Store satisfies it.
type ContactStore interface {
	Insert(ctx context.Context, in contact.Input) (contact.Contact, error)
	Get(ctx context.Context, id int64) (contact.Contact, error)
	List(ctx context.Context) ([]contact.Contact, error)
	UpdateExisting(ctx context.Context, id int64, in contact.Input) (contact.Contact, error)
	DeleteAndRenumber(ctx context.Context, id int64) (contact.Contact, error)
}

// HealthCheck is one dependency probed by /healthz.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Options wires a Server. Store, Gate and Views are required.
type Options struct {
	Addr         string
	Store        ContactStore
	Gate         *auth.Gate
	Views        *views.Renderer
	Publisher    events.Publisher // nil publishes nothing
	Logger       *zap.Logger      // nil logs nothing
	HealthChecks []HealthCheck
}

// Server is the contact book HTTP server.
type Server struct {
	store     ContactStore
	gate      *auth.Gate
	views     *views.Renderer
	publisher events.Publisher
	logger    *zap.Logger
	checks    []HealthCheck

	server *http.Server
}

// New builds a Server from opts. It does not start listening.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Gate == nil {
		return nil, errors.New("server: credential gate is required")
	}
	if opts.Views == nil {
		return nil, errors.New("server: views are required")
	}

	s := &Server{
		store:     opts.Store,
		gate:      opts.Gate,
		views:     opts.Views,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		checks:    opts.HealthChecks,
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped router. Middleware order, outermost first:
// request logging, method override, routing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleList)
	mux.HandleFunc("GET /contact/create", s.handleCreateForm)
	mux.HandleFunc("POST /contact", s.handleCreate)
	mux.HandleFunc("GET /contact/{id}", s.handleView)
	mux.HandleFunc("GET /contact/{id}/edit", s.handleEditForm)
	mux.HandleFunc("PUT /contact/{id}/edit", s.handleEdit)
	mux.HandleFunc("GET /contact/{id}/delete", s.handleDeleteConfirm)
	mux.Handle("DELETE /contact/{id}/delete", s.gate.Require(http.HandlerFunc(s.handleDelete), s.writeError))
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return s.logRequests(methodOverride(mux))
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// ListenAndServe blocks serving requests until Shutdown is called.
// A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.server.Shutdown(ctx)
}

// publish sends a change event. The write it describes has already been
// committed, so a failure is only logged.
func (s *Server) publish(ctx context.Context, t events.EventType, c contact.Contact) {
	if err := s.publisher.Publish(ctx, events.NewEvent(t, c)); err != nil {
		s.logger.Warn("failed to publish contact event",
			zap.String("type", string(t)),
			zap.Int64("contact_id", c.ID),
			zap.Error(err))
	}
}
