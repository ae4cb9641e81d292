package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"regdesk/internal/platform/metrics"
	"regdesk/internal/registration/models"
	"regdesk/internal/registration/store"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/requestcontext"
)

var fixedNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

type RegistrationServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *store.InMemoryStore
	metrics *metrics.Metrics
	logs    *bytes.Buffer
	service *Service
}

func TestRegistrationServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceSuite))
}

func (s *RegistrationServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.service = New(s.store,
		WithLogger(slog.New(slog.NewTextHandler(s.logs, nil))),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func validForm() models.Form {
	return models.Form{
		models.FieldFullName:    "  Ada Lovelace  ",
		models.FieldEmail:       " ada@example.org ",
		models.FieldPhone:       "123-456-7890",
		models.FieldInstitution: "University of London",
		models.FieldYearOfStudy: "3",
	}
}

func (s *RegistrationServiceSuite) storeLen() int {
	n, err := s.service.Count(s.ctx)
	s.Require().NoError(err)
	return n
}

func (s *RegistrationServiceSuite) TestSubmitValidForm() {
	before := s.storeLen()

	record, err := s.service.Submit(s.ctx, validForm())
	s.Require().NoError(err)
	s.Require().NotNil(record)

	s.Run("record keeps raw values", func() {
		s.Equal("  Ada Lovelace  ", record.FullName)
		s.Equal(" ada@example.org ", record.Email)
		s.Equal("123-456-7890", record.Phone)
		s.Equal("University of London", record.Institution)
		s.Equal("3", record.YearOfStudy)
	})

	s.Run("record is stamped by the service clock", func() {
		s.Equal(fixedNow, record.RegistrationDate)
		s.NotEqual(uuid.Nil, record.ID)
	})

	s.Run("store grows by exactly one", func() {
		s.Equal(before+1, s.storeLen())
		stored, err := s.service.Get(s.ctx, record.ID)
		s.Require().NoError(err)
		s.Equal(*record, *stored)
	})

	s.Run("metrics and audit log", func() {
		s.Equal(1.0, promtest.ToFloat64(s.metrics.RegistrationsRecorded))
		s.Equal(1.0, promtest.ToFloat64(s.metrics.StoreSize))
		s.Contains(s.logs.String(), "event=registration_recorded")
		s.NotContains(s.logs.String(), "ada@example.org")
	})
}

func (s *RegistrationServiceSuite) TestSubmitInvalidForm() {
	s.Require().NoError(s.store.Append(s.ctx, models.NewRecord(uuid.New(), validForm(), fixedNow)))
	before := s.storeLen()

	form := validForm()
	form[models.FieldEmail] = "a@b"
	form[models.FieldYearOfStudy] = "  "

	record, err := s.service.Submit(s.ctx, form)
	s.Nil(record)
	s.Require().Error(err)

	var failure *models.ValidationFailure
	s.Require().True(errors.As(err, &failure))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Len(failure.Outcome.Results, len(models.FieldOrder))
	s.Equal([]models.FieldID{models.FieldEmail, models.FieldYearOfStudy}, failure.Outcome.InvalidFields())
	first, ok := failure.Outcome.FirstInvalid()
	s.True(ok)
	s.Equal(models.FieldEmail, first)

	s.Equal(before, s.storeLen(), "failed submissions must not append")
	s.Equal(1.0, promtest.ToFloat64(s.metrics.SubmissionsRejected))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.FieldValidationFailed.WithLabelValues("email", "field_pattern_mismatch")))
}

func (s *RegistrationServiceSuite) TestSubmitEmptyFormReportsEveryField() {
	_, err := s.service.Submit(s.ctx, models.Form{})
	var failure *models.ValidationFailure
	s.Require().True(errors.As(err, &failure))
	s.Equal(models.FieldOrder, failure.Outcome.InvalidFields())
	s.Equal(0, s.storeLen())
}

func (s *RegistrationServiceSuite) TestDuplicateSubmissionsAreKept() {
	before := s.storeLen()

	first, err := s.service.Submit(s.ctx, validForm())
	s.Require().NoError(err)
	second, err := s.service.Submit(s.ctx, validForm())
	s.Require().NoError(err)

	s.NotEqual(first.ID, second.ID)
	s.Equal(before+2, s.storeLen())

	records, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(first.ID, records[0].ID)
	s.Equal(second.ID, records[1].ID)
}

func (s *RegistrationServiceSuite) TestValidateField() {
	res, err := s.service.ValidateField(s.ctx, models.FieldFullName, "A")
	s.Require().NoError(err)
	s.False(res.Valid)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.FieldValidationFailed.WithLabelValues("fullName", "field_too_short")))

	_, err = s.service.ValidateField(s.ctx, "nickname", "Ada")
	s.ErrorIs(err, models.ErrUnknownField)
}

func (s *RegistrationServiceSuite) TestValidateAllDoesNotRecord() {
	outcome := s.service.ValidateAll(s.ctx, validForm())
	s.True(outcome.Valid)
	s.Equal(0, s.storeLen())
}

func (s *RegistrationServiceSuite) TestShouldClearError() {
	s.True(s.service.ShouldClearError(s.ctx, models.FieldPhone, "1"))
	s.False(s.service.ShouldClearError(s.ctx, models.FieldPhone, " "))
}

func (s *RegistrationServiceSuite) TestGetUnknownRecord() {
	_, err := s.service.Get(s.ctx, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RegistrationServiceSuite) TestAuditLogCarriesClientMetadata() {
	ctx := requestcontext.WithRequestID(s.ctx, "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "Mozilla/5.0", "Firefox")

	_, err := s.service.Submit(ctx, validForm())
	s.Require().NoError(err)

	logs := s.logs.String()
	s.Contains(logs, "request_id=req-42")
	s.Contains(logs, "client_ip=203.0.113.9")
	s.Contains(logs, "browser=Firefox")
	s.Contains(logs, "log_type=audit")
}

func (s *RegistrationServiceSuite) TestEmailHashIsKeyedAndNormalised() {
	keyed := New(s.store, WithLogHashKey([]byte("organiser-secret")))
	plain := New(s.store)

	s.Equal(plain.hashEmail("Ada@Example.org "), plain.hashEmail("ada@example.org"))
	s.NotEqual(plain.hashEmail("ada@example.org"), keyed.hashEmail("ada@example.org"))
	s.Len(plain.hashEmail("ada@example.org"), 16)
}

type failingStore struct {
	*store.InMemoryStore
}

func (failingStore) Append(context.Context, models.Record) error {
	return errors.New("memory exhausted")
}

func TestSubmitStoreFailure(t *testing.T) {
	svc := New(failingStore{store.NewInMemoryStore()})

	record, err := svc.Submit(context.Background(), validForm())
	if record != nil {
		t.Fatalf("expected no record on store failure")
	}
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestSubmitStampsAtConstruction(t *testing.T) {
	calls := 0
	svc := New(store.NewInMemoryStore(), WithClock(func() time.Time {
		calls++
		return fixedNow.Add(time.Duration(calls) * time.Second)
	}))

	if _, err := svc.Submit(context.Background(), models.Form{}); err == nil {
		t.Fatalf("expected validation failure")
	}
	if calls != 0 {
		t.Fatalf("clock must not be read for invalid submissions, read %d times", calls)
	}

	record, err := svc.Submit(context.Background(), validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !record.RegistrationDate.Equal(fixedNow.Add(time.Second)) {
		t.Fatalf("unexpected timestamp %s", record.RegistrationDate)
	}
}
