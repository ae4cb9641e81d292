package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"regdesk/internal/platform/metrics"
	"regdesk/internal/platform/middleware"
	"regdesk/internal/registration/models"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/platform/middleware/admin"
	"regdesk/pkg/platform/middleware/metadata"
)

const maxBodyBytes = 16 << 10

//go:generate mockgen -source=handler.go -destination=mocks/registration-mocks.go -package=mocks Service

// Service defines the registration operations the HTTP layer needs.
type Service interface {
	ValidateField(ctx context.Context, id models.FieldID, raw string) (models.ValidationResult, error)
	ShouldClearError(ctx context.Context, id models.FieldID, raw string) bool
	ValidateAll(ctx context.Context, form models.Form) models.Outcome
	Submit(ctx context.Context, form models.Form) (*models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Record, error)
}

// Handler exposes the registration form to the landing page.
type Handler struct {
	logger         *slog.Logger
	registration   Service
	metrics        *metrics.Metrics
	adminToken     string
	requestTimeout time.Duration
}

// New creates a registration Handler. adminToken guards the organiser routes.
func New(registration Service, logger *slog.Logger, metrics *metrics.Metrics, adminToken string) *Handler {
	return &Handler{
		logger:         logger,
		registration:   registration,
		metrics:        metrics,
		adminToken:     adminToken,
		requestTimeout: 30 * time.Second,
	}
}

// WithRequestTimeout overrides the per-request deadline.
func (h *Handler) WithRequestTimeout(d time.Duration) *Handler {
	h.requestTimeout = d
	return h
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(h.requestTimeout))
	router.Use(metadata.ClientMetadata)
	router.Use(middleware.LatencyMiddleware(h.metrics))

	router.Group(func(public chi.Router) {
		public.Use(middleware.ContentTypeJSON)
		public.Post("/registrations/fields/{field}/validate", h.handleValidateField)
		public.Post("/registrations/fields/{field}/clear", h.handleClearField)
		public.Post("/registrations/validate", h.handleValidateForm)
		public.Post("/registrations", h.handleSubmit)
	})

	router.Group(func(organiser chi.Router) {
		organiser.Use(admin.RequireAdminToken(h.adminToken, h.logger))
		organiser.Get("/registrations", h.handleList)
		organiser.Get("/registrations/{id}", h.handleGet)
	})

	r.Mount("/", router)
}

// handleValidateField validates one field when it loses focus.
func (h *Handler) handleValidateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.fieldParam(w, r)
	if !ok {
		return
	}
	var req FieldValueRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.registration.ValidateField(ctx, id, req.Value)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to validate field",
			"request_id", middleware.GetRequestID(ctx),
			"field", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FieldResultResponse{Field: id, ValidationResult: res})
}

// handleClearField answers whether a field's error may be hidden while typing.
func (h *Handler) handleClearField(w http.ResponseWriter, r *http.Request) {
	id, ok := h.fieldParam(w, r)
	if !ok {
		return
	}
	var req FieldValueRequest
	if !h.decode(w, r, &req) {
		return
	}
	hide := h.registration.ShouldClearError(r.Context(), id, req.Value)
	httputil.WriteJSON(w, http.StatusOK, ClearResponse{Field: id, Clear: hide})
}

// handleValidateForm validates every field without recording anything.
func (h *Handler) handleValidateForm(w http.ResponseWriter, r *http.Request) {
	var req FormRequest
	if !h.decode(w, r, &req) {
		return
	}
	outcome := h.registration.ValidateAll(r.Context(), req.Form())
	httputil.WriteJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

// handleSubmit records a registration or reports every invalid field.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req FormRequest
	if !h.decode(w, r, &req) {
		return
	}

	record, err := h.registration.Submit(ctx, req.Form())
	if err != nil {
		var failure *models.ValidationFailure
		if errors.As(err, &failure) {
			// the service already logged the rejection
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
				Error:            string(dErrors.CodeValidation),
				ErrorDescription: "one or more fields are invalid",
				OutcomeResponse:  toOutcomeResponse(failure.Outcome),
			})
			return
		}
		h.logger.ErrorContext(ctx, "failed to submit registration",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/registrations/"+record.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, toRecordResponse(record))
}

// handleList returns every registration in submission order.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.registration.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list registrations",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(records, time.Now()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid registration id"))
		return
	}
	record, err := h.registration.Get(ctx, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "failed to get registration",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRecordResponse(record))
}

// fieldParam parses the {field} URL segment. Here the identifier is user
// input, so an unknown field is a 404 rather than a programmer error.
func (h *Handler) fieldParam(w http.ResponseWriter, r *http.Request) (models.FieldID, bool) {
	id, err := models.ParseFieldID(chi.URLParam(r, "field"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown field"))
		return "", false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid request body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}
