package registration

import (
	"log/slog"

	"regdesk/internal/platform/metrics"
	"regdesk/internal/registration/handler"
	"regdesk/internal/registration/service"
	"regdesk/internal/registration/store"
)

// Service exposes the registration workflow.
type Service = service.Service

// Handler wires HTTP endpoints to the registration service.
type Handler = handler.Handler

// Store is the volatile registration collection.
type Store = store.InMemoryStore

// NewStore constructs an empty in-memory registration store.
func NewStore() *Store {
	return store.NewInMemoryStore()
}

// NewService constructs the registration service over the given store.
func NewService(s service.Store, opts ...service.Option) *Service {
	return service.New(s, opts...)
}

// NewHandler constructs the HTTP handler for the landing page and organisers.
func NewHandler(s *Service, logger *slog.Logger, m *metrics.Metrics, adminToken string) *Handler {
	return handler.New(s, logger, m, adminToken)
}
