package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"driverhub/internal/document"
	"driverhub/internal/driver"
	"driverhub/internal/registration"
	"driverhub/internal/vehicle"
	"driverhub/pkg/domain"
	dErrors "driverhub/pkg/domain-errors"
	"driverhub/pkg/platform/httputil"
	"driverhub/pkg/requestcontext"
)

// Service defines the orchestrator operations the handler exposes.
type Service interface {
	Apply(ctx context.Context, userID domain.UserID, req registration.ApplyRequest) (driver.Profile, error)
	UploadDocument(ctx context.Context, callerID domain.UserID, driverID domain.DriverID, docType domain.DocumentType, content []byte) (document.Document, error)
	AddVehicle(ctx context.Context, callerID domain.UserID, driverID domain.DriverID, req registration.VehicleRequest) (vehicle.Vehicle, error)
	Submit(ctx context.Context, callerID domain.UserID, driverID domain.DriverID) (driver.Profile, error)
	GetStatus(ctx context.Context, callerID domain.UserID, driverID domain.DriverID) (registration.Status, error)
	SetAvailability(ctx context.Context, callerID domain.UserID, driverID domain.DriverID, available bool) (driver.Profile, error)
}

// Handler wires the driver-facing registration endpoints to the
// orchestrator. Authentication happens upstream; ownership checks happen in
// the service so they are atomic with the operation.
type Handler struct {
	service      Service
	logger       *slog.Logger
	maxFormBytes int64
}

func New(service Service, logger *slog.Logger, maxFormBytes int64) *Handler {
	return &Handler{service: service, logger: logger, maxFormBytes: maxFormBytes}
}

// Register mounts the registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/drivers/apply", h.handleApply)
	r.Post("/drivers/{driverID}/documents", h.handleUploadDocument)
	r.Post("/drivers/{driverID}/vehicle", h.handleAddVehicle)
	r.Post("/drivers/{driverID}/submit", h.handleSubmit)
	r.Get("/drivers/{driverID}/registration", h.handleGetStatus)
	r.Put("/drivers/{driverID}/availability", h.handleSetAvailability)
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	req, ok := httputil.Decode[ApplyRequest](w, r, h.logger)
	if !ok {
		return
	}

	profile, err := h.service.Apply(ctx, userID, req.toDomain())
	if err != nil {
		h.logFailure(r, "apply failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "driver applied",
		"driver_id", profile.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromProfile(profile))
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	// Multipart form: "type" field plus a "file" part. The body cap leaves
	// headroom over the document limit for the form framing; slightly
	// oversized payloads still reach the document validation, and anything
	// past the cap maps to the same payload error.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFormBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxFormBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge,
				fmt.Sprintf("document exceeds %d bytes", h.maxFormBytes)))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	docType, err := domain.ParseDocumentType(r.FormValue("type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file part is required"))
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read file part"))
		return
	}

	doc, err := h.service.UploadDocument(ctx, requestcontext.UserID(ctx), driverID, docType, content)
	if err != nil {
		h.logFailure(r, "document upload failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document uploaded",
		"driver_id", driverID,
		"document_type", docType,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, fromDocument(doc))
}

func (h *Handler) handleAddVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[VehicleRequest](w, r, h.logger)
	if !ok {
		return
	}

	v, err := h.service.AddVehicle(ctx, requestcontext.UserID(ctx), driverID, req.toDomain())
	if err != nil {
		h.logFailure(r, "add vehicle failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, fromVehicle(v))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Submit(ctx, requestcontext.UserID(ctx), driverID)
	if err != nil {
		h.logFailure(r, "submit failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registration submitted",
		"driver_id", driverID,
		"status", profile.Status,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, fromProfile(profile))
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	status, err := h.service.GetStatus(ctx, requestcontext.UserID(ctx), driverID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, fromStatus(status))
}

func (h *Handler) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	driverID, ok := h.driverID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[AvailabilityRequest](w, r, h.logger)
	if !ok {
		return
	}

	profile, err := h.service.SetAvailability(ctx, requestcontext.UserID(ctx), driverID, req.Available)
	if err != nil {
		h.logFailure(r, "set availability failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, fromProfile(profile))
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
