package service

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"

	"regdesk/internal/platform/metrics"
	"regdesk/internal/registration/models"
	"regdesk/internal/registration/validator"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/requestcontext"
)

const tracerName = "regdesk/internal/registration/service"

// Store is the registration collection the workflow appends to.
type Store interface {
	Append(ctx context.Context, record models.Record) error
	Snapshot(ctx context.Context) ([]models.Record, error)
	Len(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Record, error)
}

// Service runs the registration workflow: validate every field, and on
// success build a record and append it to the store.
//
// A submission moves Idle → Validating → Invalid, or Idle → Validating →
// Valid → Recorded. Invalid attempts leave the store untouched and are not
// retried; the caller resubmits corrected input.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
	newID   func() uuid.UUID
	hashKey []byte
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithLogHashKey keys the BLAKE2b hash that replaces emails in audit logs.
// Keys longer than 64 bytes are truncated.
func WithLogHashKey(key []byte) Option {
	return func(s *Service) {
		if len(key) > blake2b.Size {
			key = key[:blake2b.Size]
		}
		s.hashKey = key
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tracer: otel.Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateField validates one field at blur time.
func (s *Service) ValidateField(ctx context.Context, id models.FieldID, raw string) (models.ValidationResult, error) {
	res, err := validator.ValidateField(id, raw)
	if err != nil {
		return models.ValidationResult{}, err
	}
	s.observeResult(id, res)
	return res, nil
}

// ShouldClearError applies the input-time display policy.
func (s *Service) ShouldClearError(_ context.Context, id models.FieldID, raw string) bool {
	return validator.ShouldClearError(id, raw)
}

// ValidateAll validates the whole form without recording anything.
func (s *Service) ValidateAll(ctx context.Context, form models.Form) models.Outcome {
	_, span := s.tracer.Start(ctx, "registration.ValidateAll")
	defer span.End()

	outcome := validator.ValidateAll(form)
	for _, id := range models.FieldOrder {
		s.observeResult(id, outcome.Results[id])
	}
	span.SetAttributes(attribute.Bool("registration.valid", outcome.Valid))
	return outcome
}

// Submit validates form and records it. An invalid form returns
// *models.ValidationFailure and records nothing. Identical valid submissions
// are recorded as separate registrations.
func (s *Service) Submit(ctx context.Context, form models.Form) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Submit")
	defer span.End()

	outcome := s.ValidateAll(ctx, form)
	if !outcome.Valid {
		s.incrementRejected()
		first, _ := outcome.FirstInvalid()
		span.SetAttributes(attribute.String("registration.first_invalid", string(first)))
		if s.logger != nil {
			s.logger.InfoContext(ctx, "registration rejected",
				"request_id", requestcontext.RequestID(ctx),
				"invalid_fields", joinFields(outcome.InvalidFields()),
				"first_invalid", first,
			)
		}
		return nil, &models.ValidationFailure{Outcome: outcome}
	}

	// stamped here, after validation, not when the request arrived
	record := models.NewRecord(s.newID(), form, s.now())
	if err := s.store.Append(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record registration")
	}
	span.SetAttributes(attribute.String("registration.id", record.ID.String()))

	s.incrementRecorded(ctx)
	s.logAudit(ctx, "registration_recorded",
		"record_id", record.ID,
		"email_hash", s.hashEmail(record.Email),
	)
	return &record, nil
}

// List returns every recorded registration in insertion order.
func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	records, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return records, nil
}

// Get returns one registration by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	return record, nil
}

// Count returns the number of recorded registrations.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.Len(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count registrations")
	}
	return n, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		attributes = append(attributes, "client_ip", ip)
	}
	if browser := requestcontext.Browser(ctx); browser != "" {
		attributes = append(attributes, "browser", browser)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// hashEmail returns a short keyed digest so log lines can be correlated
// without carrying the address itself.
func (s *Service) hashEmail(email string) string {
	h, err := blake2b.New256(s.hashKey)
	if err != nil {
		return ""
	}
	h.Write([]byte(strings.ToLower(models.TrimValue(email))))
	return hex.EncodeToString(h.Sum(nil)[:8])
}

func (s *Service) observeResult(id models.FieldID, res models.ValidationResult) {
	if s.metrics != nil && !res.Valid {
		s.metrics.IncrementFieldFailure(string(id), string(res.Kind))
	}
}

func (s *Service) incrementRejected() {
	if s.metrics != nil {
		s.metrics.IncrementRejected()
	}
}

func (s *Service) incrementRecorded(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	size, err := s.store.Len(ctx)
	if err != nil {
		return
	}
	s.metrics.IncrementRecorded(size)
}

func joinFields(ids []models.FieldID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ",")
}
