// Package handler is the HTTP surface of the trust control plane. It parses
// and validates requests, delegates to the eligibility façade and the
// limiter, and maps results to JSON; no business rules live here.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trustplane/internal/transport/http/shared"
	"trustplane/internal/trust/models"
	"trustplane/internal/trust/ratelimit"
	id "trustplane/pkg/domain"
	dErrors "trustplane/pkg/domain-errors"
	"trustplane/pkg/platform/middleware/auth"
	"trustplane/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks EligibilityService,LimiterService

// EligibilityService is the façade the handler delegates domain calls to.
type EligibilityService interface {
	CanCreateListing(ctx context.Context, userID id.UserID) (*models.PostCheck, error)
	IsTrustedForAction(ctx context.Context, userID id.UserID, level models.TrustLevel) (bool, error)
	SubmitDocument(ctx context.Context, userID id.UserID, docType models.DocumentType, payloadRef string) (*models.VerificationDocument, error)
	ReviewDocument(ctx context.Context, docID id.DocumentID, decision models.ReviewDecision, reason string) (*models.ReviewOutcome, error)
	VerificationProgress(ctx context.Context, userID id.UserID) (*models.VerificationProgress, error)
	ConfirmEmail(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error)
	ConfirmPhone(ctx context.Context, userID id.UserID) (*models.VerificationFlags, error)
	QuotaStatus(ctx context.Context, userID id.UserID) (*models.QuotaStatus, error)
	ApplyPayment(ctx context.Context, userID id.UserID, tier models.SubscriptionTier, paidAt time.Time) (*models.Subscription, error)
}

// LimiterService guards sensitive flows.
type LimiterService interface {
	CheckAndRecordAttempt(ctx context.Context, flow ratelimit.Flow, subject string) (*models.AttemptResult, error)
	Reset(ctx context.Context, flow ratelimit.Flow, subject string) error
}

// Handler handles trust and eligibility endpoints.
type Handler struct {
	logger       *slog.Logger
	eligibility  EligibilityService
	limiter      LimiterService
	jwtValidator auth.JWTValidator
}

// New creates a new trust Handler.
func New(
	eligibility EligibilityService,
	limiter LimiterService,
	logger *slog.Logger,
	jwtValidator auth.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		eligibility:  eligibility,
		limiter:      limiter,
		jwtValidator: jwtValidator,
	}
}

// Register registers the trust routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/trust", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.jwtValidator, h.logger))

		r.Post("/documents", h.handleSubmitDocument)
		r.Post("/documents/{documentID}/review", h.handleReviewDocument)
		r.Get("/verification/progress", h.handleProgress)
		r.Post("/verification/email/confirm", h.handleConfirmEmail)
		r.Post("/verification/phone/confirm", h.handleConfirmPhone)
		r.Get("/quota", h.handleQuotaStatus)
		r.Get("/eligibility/listing", h.handleCanCreateListing)
		r.Get("/eligibility/action", h.handleIsTrusted)
	})

	// The limiter endpoints serve the auth gateway, which runs before any
	// user token exists; they are protected by network policy, not JWT.
	r.Route("/limits/{flow}", func(r chi.Router) {
		r.Post("/check", h.handleAttemptCheck)
		r.Post("/reset", h.handleAttemptReset)
	})

	// Billing provider webhook, verified upstream by the API gateway.
	r.Post("/webhooks/payment", h.handlePaymentWebhook)
}

func (h *Handler) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	var req models.SubmitDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	docType, err := models.ParseDocumentType(req.Type)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// Facial uploads burn through review capacity, so they are limiter-guarded.
	if category, ok := docType.Category(); ok && category == models.CategoryFacial {
		result, err := h.limiter.CheckAndRecordAttempt(ctx, ratelimit.FlowFacialUpload, userID.String())
		if err != nil {
			h.logError(ctx, "facial upload limit check failed", err)
			shared.WriteError(w, err)
			return
		}
		if !result.Allowed {
			writeRateLimited(w, result)
			return
		}
	}

	doc, err := h.eligibility.SubmitDocument(ctx, userID, docType, req.PayloadRef)
	if err != nil {
		h.logError(ctx, "document submission failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleReviewDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.ReviewDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	decision, err := models.ParseReviewDecision(req.Decision)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	outcome, err := h.eligibility.ReviewDocument(ctx, docID, decision, req.Reason)
	if err != nil {
		h.logError(ctx, "document review failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, outcome)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	progress, err := h.eligibility.VerificationProgress(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logError(ctx, "progress read failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	h.confirmChannel(w, r, h.eligibility.ConfirmEmail)
}

func (h *Handler) handleConfirmPhone(w http.ResponseWriter, r *http.Request) {
	h.confirmChannel(w, r, h.eligibility.ConfirmPhone)
}

func (h *Handler) confirmChannel(w http.ResponseWriter, r *http.Request, confirm func(context.Context, id.UserID) (*models.VerificationFlags, error)) {
	ctx := r.Context()

	flags, err := confirm(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logError(ctx, "channel confirmation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, flags)
}

func (h *Handler) handleQuotaStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.eligibility.QuotaStatus(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logError(ctx, "quota status read failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleCanCreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	check, err := h.eligibility.CanCreateListing(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.logError(ctx, "listing eligibility check failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, check)
}

func (h *Handler) handleIsTrusted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	level, err := models.ParseTrustLevel(r.URL.Query().Get("level"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	trusted, err := h.eligibility.IsTrustedForAction(ctx, requestcontext.UserID(ctx), level)
	if err != nil {
		h.logError(ctx, "trust check failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"level":   level,
		"trusted": trusted,
	})
}

func (h *Handler) handleAttemptCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flow := ratelimit.Flow(chi.URLParam(r, "flow"))

	var req models.AttemptCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.limiter.CheckAndRecordAttempt(ctx, flow, req.Subject)
	if err != nil {
		h.logError(ctx, "attempt check failed", err)
		shared.WriteError(w, err)
		return
	}

	if !result.Allowed {
		writeRateLimited(w, result)
		return
	}
	writeRateLimitHeaders(w, result)
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAttemptReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flow := ratelimit.Flow(chi.URLParam(r, "flow"))

	var req models.AttemptCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.limiter.Reset(ctx, flow, req.Subject); err != nil {
		h.logError(ctx, "attempt reset failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.PaymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tier, err := models.ParseSubscriptionTier(req.Tier)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var paidAt time.Time
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	sub, err := h.eligibility.ApplyPayment(ctx, userID, tier, paidAt)
	if err != nil {
		h.logError(ctx, "payment application failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func writeRateLimited(w http.ResponseWriter, result *models.AttemptResult) {
	writeRateLimitHeaders(w, result)
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	shared.WriteJSON(w, http.StatusTooManyRequests, result)
}

func writeRateLimitHeaders(w http.ResponseWriter, result *models.AttemptResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
