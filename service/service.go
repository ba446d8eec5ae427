package service

import (
	"time"

	"github.com/od-kfujiwara/tosho-kanri-system/config"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/jsonlog"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
	"github.com/od-kfujiwara/tosho-kanri-system/repository"
)

// Service defines the service layer. It enforces the cross-entity
// invariants (availability, uniqueness, referential checks) and
// orchestrates the multi-store checkout/return workflow.
type Service interface {
	books
	users
	loans
}

type service struct {
	config config.Config
	logger *jsonlog.Logger
	repo   repository.Repository
	now    func() time.Time
}

// Option configures a Service.
type Option func(*service)

// WithClock overrides the time source. Dates on new loans and overdue
// checks follow the injected clock.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new instance of Service.
func New(cfg config.Config, logger *jsonlog.Logger, repo repository.Repository, opts ...Option) Service {
	s := &service{
		config: cfg,
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// today returns the current date in storage format.
func (s *service) today() string {
	return s.now().Format(validator.DateLayout)
}
