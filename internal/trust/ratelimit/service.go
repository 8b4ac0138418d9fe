// Package ratelimit guards sensitive flows with fixed-window attempt
// limiting. The limiter itself is generic; each guarded flow binds a key
// scheme and an attempt policy.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trustplane/internal/trust/config"
	"trustplane/internal/trust/metrics"
	"trustplane/internal/trust/models"
	"trustplane/internal/trust/ports"
	id "trustplane/pkg/domain"
	dErrors "trustplane/pkg/domain-errors"
)

// Type aliases for shared interfaces.
type (
	Store          = ports.AttemptStore
	AuditPublisher = ports.AuditPublisher
)

// Flow identifies a guarded operation. Each flow has its own attempt policy
// and key scheme, so exhausting one flow never affects another.
type Flow string

const (
	FlowLogin         Flow = "login"
	FlowRegistration  Flow = "registration"
	FlowPasswordReset Flow = "password_reset"
	FlowFacialUpload  Flow = "facial_upload"
)

type Service struct {
	store          Store
	auditPublisher AuditPublisher
	logger         *slog.Logger
	config         *config.Config
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("attempt store is required")
	}

	svc := &Service{
		store:  store,
		config: config.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// CheckAndRecordAttempt atomically checks the flow's limit for a subject
// (client address for anonymous flows, user id for authenticated ones) and
// consumes one slot when admissible. A denied attempt is a modeled result,
// not an error; errors mean the store itself failed.
func (s *Service) CheckAndRecordAttempt(ctx context.Context, flow Flow, subject string) (*models.AttemptResult, error) {
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rate limit subject is required")
	}

	policy, err := s.policy(flow)
	if err != nil {
		return nil, err
	}

	key, err := keyFor(flow, subject)
	if err != nil {
		return nil, err
	}

	result, err := s.store.Allow(ctx, key, policy.MaxAttempts, policy.Window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check attempt limit")
	}

	if !result.Allowed {
		if s.metrics != nil {
			s.metrics.IncAttemptBlocked(string(flow))
		}
		ports.LogAudit(ctx, s.logger, s.auditPublisher, id.UserID{}, "attempt_blocked",
			"flow", flow,
			"subject", subject,
			"retry_after_seconds", result.RetryAfter,
		)
	}

	return result, nil
}

// Allow applies an explicit limit and window to a key, bypassing the per-flow
// policies. Callers with bespoke limits (admin tooling, batch jobs) use this.
func (s *Service) Allow(ctx context.Context, key string, maxAttempts int, window time.Duration) (*models.AttemptResult, error) {
	if key == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rate limit key is required")
	}
	if maxAttempts <= 0 || window <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "max attempts and window must be positive")
	}

	result, err := s.store.Allow(ctx, key, maxAttempts, window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check attempt limit")
	}
	return result, nil
}

// Reset clears the counter for a flow and subject, e.g. after a successful
// login or a completed password reset.
func (s *Service) Reset(ctx context.Context, flow Flow, subject string) error {
	if subject == "" {
		return dErrors.New(dErrors.CodeBadRequest, "rate limit subject is required")
	}

	key, err := keyFor(flow, subject)
	if err != nil {
		return err
	}

	if err := s.store.Reset(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset attempt counter")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, id.UserID{}, "attempt_counter_cleared",
		"flow", flow,
		"subject", subject,
	)

	return nil
}

// CurrentCount reports how many attempts a subject has consumed in its active
// window. Zero means no active window.
func (s *Service) CurrentCount(ctx context.Context, flow Flow, subject string) (int, error) {
	key, err := keyFor(flow, subject)
	if err != nil {
		return 0, err
	}

	count, err := s.store.GetCurrentCount(ctx, key)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read attempt counter")
	}
	return count, nil
}

func (s *Service) policy(flow Flow) (config.AttemptPolicy, error) {
	switch flow {
	case FlowLogin:
		return s.config.Login, nil
	case FlowRegistration:
		return s.config.Registration, nil
	case FlowPasswordReset:
		return s.config.PasswordReset, nil
	case FlowFacialUpload:
		return s.config.FacialUpload, nil
	default:
		return config.AttemptPolicy{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown rate limit flow: %s", flow)
	}
}

func keyFor(flow Flow, subject string) (string, error) {
	switch flow {
	case FlowLogin:
		return models.LoginKey(subject), nil
	case FlowRegistration:
		return models.RegistrationKey(subject), nil
	case FlowPasswordReset:
		return models.PasswordResetKey(subject), nil
	case FlowFacialUpload:
		userID, err := id.ParseUserID(subject)
		if err != nil {
			return "", err
		}
		return models.FacialUploadKey(userID), nil
	default:
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown rate limit flow: %s", flow)
	}
}
