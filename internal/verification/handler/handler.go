package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"driverhub/internal/audit"
	"driverhub/internal/driver"
	"driverhub/pkg/domain"
	dErrors "driverhub/pkg/domain-errors"
	"driverhub/pkg/platform/httputil"
	"driverhub/pkg/requestcontext"
)

// Service defines the gate decisions the admin surface exposes.
type Service interface {
	Verify(ctx context.Context, driverID domain.DriverID) (driver.Profile, error)
	Reject(ctx context.Context, driverID domain.DriverID, reason string, hard bool) (driver.Profile, error)
	VerifyDocument(ctx context.Context, driverID domain.DriverID, docID domain.DocumentID) error
}

// AuditReader lists a driver's audit trail.
type AuditReader interface {
	ListByDriver(ctx context.Context, driverID domain.DriverID) ([]audit.Event, error)
}

// Handler serves the admin verification surface. Mounted behind the admin
// key middleware; there is no per-driver ownership check here.
type Handler struct {
	service Service
	trail   AuditReader
	logger  *slog.Logger
}

func New(service Service, trail AuditReader, logger *slog.Logger) *Handler {
	return &Handler{service: service, trail: trail, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/drivers/{driverID}/verify", h.handleVerify)
	r.Post("/drivers/{driverID}/reject", h.handleReject)
	r.Post("/drivers/{driverID}/documents/{documentID}/verify", h.handleVerifyDocument)
	r.Get("/drivers/{driverID}/audit", h.handleListAudit)
}

// RejectRequest carries the gate's rejection decision. Hard rejections
// deactivate the profile instead of bouncing it back to the driver.
type RejectRequest struct {
	Reason string `json:"reason"`
	Hard   bool   `json:"hard,omitempty"`
}

type profileResponse struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func fromProfile(p driver.Profile) profileResponse {
	return profileResponse{
		ID:              p.ID.String(),
		Status:          p.Status.String(),
		RejectionReason: p.RejectionReason,
	}
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Verify(ctx, driverID)
	if err != nil {
		h.logFailure(r, "verify failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "driver verified",
		"driver_id", driverID,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, fromProfile(profile))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[RejectRequest](w, r, h.logger)
	if !ok {
		return
	}

	profile, err := h.service.Reject(ctx, driverID, req.Reason, req.Hard)
	if err != nil {
		h.logFailure(r, "reject failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "driver rejected",
		"driver_id", driverID,
		"hard", req.Hard,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, fromProfile(profile))
}

func (h *Handler) handleVerifyDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}
	docID, err := domain.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.VerifyDocument(ctx, driverID, docID); err != nil {
		h.logFailure(r, "verify document failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"document_id": docID.String(),
		"result":      "verified",
	})
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	events, err := h.trail.ListByDriver(ctx, driverID)
	if err != nil {
		h.logFailure(r, "audit list failed", err)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "internal error", err))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	httputil.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) driverID(w http.ResponseWriter, r *http.Request) (domain.DriverID, bool) {
	driverID, err := domain.ParseDriverID(chi.URLParam(r, "driverID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.DriverID{}, false
	}
	return driverID, true
}

func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"code", code,
		"request_id", requestcontext.RequestID(ctx),
	)
}
