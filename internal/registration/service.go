package registration

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"driverhub/internal/audit"
	"driverhub/internal/document"
	"driverhub/internal/driver"
	"driverhub/internal/registration/metrics"
	"driverhub/internal/vehicle"
	"driverhub/pkg/domain"
	dErrors "driverhub/pkg/domain-errors"
	"driverhub/pkg/platform/sentinel"
)

// Documents is the document store adapter contract the orchestrator needs.
type Documents interface {
	Store(ctx context.Context, driverID domain.DriverID, docType domain.DocumentType, content []byte) (document.Document, error)
	List(ctx context.Context, driverID domain.DriverID) ([]document.Document, error)
}

// ApplyRequest carries the driver application payload.
type ApplyRequest struct {
	LicenseNumber string
	Timezone      string
	Phone         string
}

// VehicleRequest carries the vehicle registration payload.
type VehicleRequest struct {
	Make         string
	Model        string
	LicensePlate string
	MaxWeightKg  float64
	MaxVolumeM3  float64
	MaxPackages  int
}

// Service is the registration orchestrator. It owns the five step
// operations and enforces their ordering and idempotency rules. Every
// precondition is checked against current store state and every mutation is
// a single atomic store call, so a step either fully applies or fully fails.
type Service struct {
	drivers   driver.Store
	documents Documents
	vehicles  vehicle.Store
	auditor   audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewService(
	drivers driver.Store,
	documents Documents,
	vehicles vehicle.Store,
	auditor audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		drivers:   drivers,
		documents: documents,
		vehicles:  vehicles,
		auditor:   auditor,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("driverhub/registration"),
	}
}

// Apply creates the driver profile for the authenticated user. A user may
// hold at most one profile; re-application is rejected rather than silently
// succeeding, because it is a distinct user error from resubmission.
func (s *Service) Apply(ctx context.Context, userID domain.UserID, req ApplyRequest) (driver.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registration.apply")
	defer span.End()
	start := time.Now()

	if req.LicenseNumber == "" {
		s.metrics.ObserveStep("apply", string(dErrors.CodeBadRequest), time.Since(start))
		return driver.Profile{}, dErrors.New(dErrors.CodeBadRequest, "license_number is required")
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		s.metrics.ObserveStep("apply", string(dErrors.CodeBadRequest), time.Since(start))
		return driver.Profile{}, dErrors.New(dErrors.CodeBadRequest, "invalid timezone: "+timezone)
	}

	if _, err := s.drivers.FindByUserID(ctx, userID); err == nil {
		s.metrics.ObserveStep("apply", string(dErrors.CodeAlreadyRegistered), time.Since(start))
		return driver.Profile{}, dErrors.New(dErrors.CodeAlreadyRegistered, "user already holds a driver profile")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.ObserveStep("apply", string(dErrors.CodeUnavailable), time.Since(start))
		return driver.Profile{}, translateInfra(err)
	}

	now := time.Now()
	profile := driver.Profile{
		ID:            domain.NewDriverID(),
		UserID:        userID,
		Status:        domain.StatusProfileCreated,
		LicenseNumber: req.LicenseNumber,
		Timezone:      timezone,
		Phone:         req.Phone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.drivers.Create(ctx, profile); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a create race with another request for the same user.
			s.metrics.ObserveStep("apply", string(dErrors.CodeAlreadyRegistered), time.Since(start))
			return driver.Profile{}, dErrors.New(dErrors.CodeAlreadyRegistered, "user already holds a driver profile")
		}
		s.metrics.ObserveStep("apply", string(dErrors.CodeUnavailable), time.Since(start))
		return driver.Profile{}, translateInfra(err)
	}

	s.auditor.Emit(ctx, audit.Event{
		Type:     audit.EventDriverApplied,
		DriverID: profile.ID,
		UserID:   &userID,
	})
	s.metrics.ObserveStep("apply", "ok", time.Since(start))
	s.metrics.IncrementAdvance(domain.StatusProfileCreated.String())
	return profile, nil
}

// UploadDocument stores one document, superseding any prior document of the
// same type, and advances the status to documents_submitted on the first
// upload. Safe to call repeatedly and out of order; completeness is only
// assessed at Submit.
func (s *Service) UploadDocument(ctx context.Context, callerID domain.UserID, driverID domain.DriverID, docType domain.DocumentType, content []byte) (document.Document, error) {
	ctx, span := s.tracer.Start(ctx, "registration.upload_document")
	defer span.End()
	start := time.Now()

	profile, err := s.loadOwned(ctx, callerID, driverID)
	if err != nil {
		s.metrics.ObserveStep("upload_document", string(dErrors.CodeOf(err)), time.Since(start))
		return document.Document{}, err
	}
	if profile.Status.IsTerminal() {
		s.metrics.ObserveStep("upload_document", string(dErrors.CodeInvalidState), time.Since(start))
		return document.Document{}, dErrors.New(dErrors.CodeInvalidState,
			"documents cannot be uploaded once the profile is "+profile.Status.String())
	}

	doc, err := s.documents.Store(ctx, driverID, docType, content)
	if err != nil {
		// Adapter validation errors pass through verbatim.
		s.metrics.ObserveStep("upload_document", string(dErrors.CodeOf(err)), time.Since(start))
		var de *dErrors.Error
		if errors.As(err, &de) {
			return document.Document{}, err
		}
		return document.Document{}, translateInfra(err)
	}

	s.advance(ctx, driverID, domain.StatusDocumentsSubmitted)
	s.auditor.Emit(ctx, audit.Event{
		Type:     audit.EventDocumentUploaded,
		DriverID: driverID,
		UserID:   &callerID,
		Metadata: map[string]string{"document_type": docType.String()},
	})
	s.metrics.ObserveStep("upload_document", "ok", time.Since(start))
	return doc, nil
}

// AddVehicle upserts the driver's vehicle with replace semantics and
// advances the status to vehicle_added when it was at or before
// documents_submitted.
func (s *Service) AddVehicle(ctx context.Context, callerID domain.UserID, driverID domain.DriverID, req VehicleRequest) (vehicle.Vehicle, error) {
	ctx, span := s.tracer.Start(ctx, "registration.add_vehicle")
	defer span.End()
	start := time.Now()

	profile, err := s.loadOwned(ctx, callerID, driverID)
	if err != nil {
		s.metrics.ObserveStep("add_vehicle", string(dErrors.CodeOf(err)), time.Since(start))
		return vehicle.Vehicle{}, err
	}
	if profile.Status.IsTerminal() {
		s.metrics.ObserveStep("add_vehicle", string(dErrors.CodeInvalidState), time.Since(start))
		return vehicle.Vehicle{}, dErrors.New(dErrors.CodeInvalidState,
			"vehicle is immutable once the profile is "+profile.Status.String())
	}

	v := vehicle.Vehicle{
		ID:           domain.NewVehicleID(),
		DriverID:     driverID,
		Make:         req.Make,
		Model:        req.Model,
		LicensePlate: req.LicensePlate,
		MaxWeightKg:  req.MaxWeightKg,
		MaxVolumeM3:  req.MaxVolumeM3,
		MaxPackages:  req.MaxPackages,
		CreatedAt:    time.Now(),
	}
	if err := v.ValidateCapacity(); err != nil {
		s.metrics.ObserveStep("add_vehicle", string(dErrors.CodeInvalidCapacity), time.Since(start))
		return vehicle.Vehicle{}, err
	}
	if err := s.vehicles.Upsert(ctx, v); err != nil {
		s.metrics.ObserveStep("add_vehicle", string(dErrors.CodeUnavailable), time.Since(start))
		return vehicle.Vehicle{}, translateInfra(err)
	}

	s.advance(ctx, driverID, domain.StatusVehicleAdded)
	s.auditor.Emit(ctx, audit.Event{
		Type:     audit.EventVehicleAdded,
		DriverID: driverID,
		UserID:   &callerID,
	})
	s.metrics.ObserveStep("add_vehicle", "ok", time.Since(start))

	stored, err := s.vehicles.FindByDriver(ctx, driverID)
	if err != nil {
		return v, nil
	}
	return stored, nil
}

// Submit is the gating operation: it verifies every required document type
// has a current entry and a vehicle exists, then advances to
// pending_verification. Idempotent: submitting an already-submitted or
// verified profile succeeds without re-transitioning. A profile bounced
// back by a soft rejection stays at pending_verification, so a resubmit at
// that state with a recorded reason re-runs the completeness check, clears
// the reason, and records a fresh submission event.
func (s *Service) Submit(ctx context.Context, callerID domain.UserID, driverID domain.DriverID) (driver.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registration.submit")
	defer span.End()
	start := time.Now()

	profile, err := s.loadOwned(ctx, callerID, driverID)
	if err != nil {
		s.metrics.ObserveStep("submit", string(dErrors.CodeOf(err)), time.Since(start))
		return driver.Profile{}, err
	}
	if profile.Status == domain.StatusDeactivated {
		s.metrics.ObserveStep("submit", string(dErrors.CodeInvalidState), time.Since(start))
		return driver.Profile{}, dErrors.New(dErrors.CodeInvalidState, "profile is deactivated")
	}
	resubmission := profile.Status == domain.StatusPendingVerification && profile.RejectionReason != ""
	if profile.Status.Rank() >= domain.StatusPendingVerification.Rank() && !resubmission {
		// Already past the gate: not a failure of intent.
		s.metrics.ObserveStep("submit", "ok", time.Since(start))
		return profile, nil
	}

	docs, err := s.documents.List(ctx, driverID)
	if err != nil {
		s.metrics.ObserveStep("submit", string(dErrors.CodeUnavailable), time.Since(start))
		return driver.Profile{}, translateInfra(err)
	}
	present := make(map[domain.DocumentType]bool, len(docs))
	for _, doc := range docs {
		present[doc.Type] = true
	}
	complete := true
	for _, required := range domain.RequiredDocumentTypes() {
		if !present[required] {
			complete = false
			break
		}
	}
	if complete {
		if _, err := s.vehicles.FindByDriver(ctx, driverID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				complete = false
			} else {
				s.metrics.ObserveStep("submit", string(dErrors.CodeUnavailable), time.Since(start))
				return driver.Profile{}, translateInfra(err)
			}
		}
	}
	if !complete {
		// The status projector enumerates the specifics; submit does not.
		s.metrics.ObserveStep("submit", string(dErrors.CodeIncompleteRegistration), time.Since(start))
		return driver.Profile{}, dErrors.New(dErrors.CodeIncompleteRegistration,
			"registration is incomplete; consult the registration status for missing items")
	}

	if _, err := s.drivers.AdvanceStatus(ctx, driverID, domain.StatusPendingVerification); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			s.metrics.ObserveStep("submit", string(dErrors.CodeInvalidState), time.Since(start))
			return driver.Profile{}, dErrors.New(dErrors.CodeInvalidState, "profile is deactivated")
		}
		s.metrics.ObserveStep("submit", string(dErrors.CodeUnavailable), time.Since(start))
		return driver.Profile{}, translateInfra(err)
	}
	// A prior rejection is resolved by resubmitting.
	if profile.RejectionReason != "" {
		if err := s.drivers.RecordRejection(ctx, driverID, ""); err != nil {
			s.logger.WarnContext(ctx, "failed to clear rejection reason",
				"driver_id", driverID, "error", err)
		}
	}

	s.auditor.Emit(ctx, audit.Event{
		Type:     audit.EventRegistrationSubmitted,
		DriverID: driverID,
		UserID:   &callerID,
	})
	s.metrics.ObserveStep("submit", "ok", time.Since(start))
	if !resubmission {
		s.metrics.IncrementAdvance(domain.StatusPendingVerification.String())
	}

	refreshed, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return profile, nil
	}
	return refreshed, nil
}

// GetStatus is the pure read behind the status projector. Never mutates
// state; callable at any pipeline stage.
func (s *Service) GetStatus(ctx context.Context, callerID domain.UserID, driverID domain.DriverID) (Status, error) {
	ctx, span := s.tracer.Start(ctx, "registration.get_status")
	defer span.End()

	profile, err := s.loadOwned(ctx, callerID, driverID)
	if err != nil {
		return Status{}, err
	}
	docs, err := s.documents.List(ctx, driverID)
	if err != nil {
		return Status{}, translateInfra(err)
	}

	var veh *vehicle.Vehicle
	if found, err := s.vehicles.FindByDriver(ctx, driverID); err == nil {
		veh = &found
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return Status{}, translateInfra(err)
	}

	return Project(profile, docs, veh), nil
}

// SetAvailability flips the availability flag of a verified driver.
func (s *Service) SetAvailability(ctx context.Context, callerID domain.UserID, driverID domain.DriverID, available bool) (driver.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registration.set_availability")
	defer span.End()

	profile, err := s.loadOwned(ctx, callerID, driverID)
	if err != nil {
		return driver.Profile{}, err
	}
	if profile.Status != domain.StatusVerified {
		return driver.Profile{}, dErrors.New(dErrors.CodeInvalidState, "only verified drivers can change availability")
	}
	if err := s.drivers.SetAvailability(ctx, driverID, available); err != nil {
		return driver.Profile{}, translateInfra(err)
	}
	profile.IsAvailable = available
	return profile, nil
}

// loadOwned loads a profile and enforces that the caller owns it.
func (s *Service) loadOwned(ctx context.Context, callerID domain.UserID, driverID domain.DriverID) (driver.Profile, error) {
	profile, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return driver.Profile{}, dErrors.New(dErrors.CodeNotFound, "driver profile not found")
		}
		return driver.Profile{}, translateInfra(err)
	}
	if profile.UserID != callerID {
		return driver.Profile{}, dErrors.New(dErrors.CodeForbidden, "not the caller's driver profile")
	}
	return profile, nil
}

// advance applies the monotonic status rule after a side effect persisted.
// A concurrent transition to a terminal state is not an error here: the
// side effect stands and status cannot regress.
func (s *Service) advance(ctx context.Context, driverID domain.DriverID, target domain.DriverStatus) {
	result, err := s.drivers.AdvanceStatus(ctx, driverID, target)
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		s.logger.WarnContext(ctx, "status advance skipped: profile reached terminal state",
			"driver_id", driverID, "target", target)
	case err != nil:
		s.logger.ErrorContext(ctx, "status advance failed",
			"driver_id", driverID, "target", target, "error", err)
	case result == target:
		s.metrics.IncrementAdvance(target.String())
	}
}

// translateInfra maps store sentinels to the retryable/terminal taxonomy.
func translateInfra(err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(dErrors.CodeUnavailable, "storage temporarily unavailable, retry the request", err)
	}
	return dErrors.Wrap(dErrors.CodeInternal, "internal error", err)
}
