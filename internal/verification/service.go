// Package verification implements the gate: the externally-triggered
// transitions that resolve a submitted registration. Not exposed to the
// driver; invoked by an administrator or automated check.
package verification

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"driverhub/internal/audit"
	"driverhub/internal/driver"
	"driverhub/pkg/domain"
	dErrors "driverhub/pkg/domain-errors"
	"driverhub/pkg/platform/sentinel"
)

// Documents is the slice of the document adapter the gate needs.
type Documents interface {
	MarkVerified(ctx context.Context, driverID domain.DriverID, docID domain.DocumentID) error
	MarkAllVerified(ctx context.Context, driverID domain.DriverID) error
}

// Service applies gate decisions. Every transition is conditional on the
// profile sitting at pending_verification; verification is not retroactive
// to an incomplete profile.
type Service struct {
	drivers   driver.Store
	documents Documents
	auditor   audit.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewService(drivers driver.Store, documents Documents, auditor audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		drivers:   drivers,
		documents: documents,
		auditor:   auditor,
		logger:    logger,
		tracer:    otel.Tracer("driverhub/verification"),
	}
}

// Verify transitions pending_verification → verified and marks the current
// documents verified.
func (s *Service) Verify(ctx context.Context, driverID domain.DriverID) (driver.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "verification.verify")
	defer span.End()

	if err := s.drivers.SetStatus(ctx, driverID, domain.StatusPendingVerification, domain.StatusVerified); err != nil {
		return driver.Profile{}, s.translate(err)
	}
	if err := s.documents.MarkAllVerified(ctx, driverID); err != nil {
		// The profile decision stands; individual flags catch up on the
		// next admin pass.
		s.logger.WarnContext(ctx, "failed to mark documents verified",
			"driver_id", driverID, "error", err)
	}

	s.auditor.Emit(ctx, audit.Event{
		Type:     audit.EventDriverVerified,
		DriverID: driverID,
	})

	profile, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return driver.Profile{}, s.translate(err)
	}
	return profile, nil
}

// Reject records a rejection. A soft rejection leaves the profile at
// pending_verification with the reason recorded so the driver can fix the
// gaps and resubmit; a hard rejection deactivates the profile.
func (s *Service) Reject(ctx context.Context, driverID domain.DriverID, reason string, hard bool) (driver.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "verification.reject")
	defer span.End()

	if reason == "" {
		return driver.Profile{}, dErrors.New(dErrors.CodeBadRequest, "rejection reason is required")
	}

	profile, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return driver.Profile{}, s.translate(err)
	}
	if profile.Status != domain.StatusPendingVerification {
		return driver.Profile{}, dErrors.New(dErrors.CodeInvalidState,
			"profile is not pending verification")
	}

	if hard {
		if err := s.drivers.SetStatus(ctx, driverID, domain.StatusPendingVerification, domain.StatusDeactivated); err != nil {
			return driver.Profile{}, s.translate(err)
		}
	}
	if err := s.drivers.RecordRejection(ctx, driverID, reason); err != nil {
		return driver.Profile{}, s.translate(err)
	}

	eventType := audit.EventDriverRejected
	if hard {
		eventType = audit.EventDriverDeactivated
	}
	s.auditor.Emit(ctx, audit.Event{
		Type:     eventType,
		DriverID: driverID,
		Reason:   reason,
	})

	profile, err = s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return driver.Profile{}, s.translate(err)
	}
	return profile, nil
}

// VerifyDocument flips one document's verified flag ahead of the overall
// decision. Documents may be verified piecemeal while the profile is still
// pending.
func (s *Service) VerifyDocument(ctx context.Context, driverID domain.DriverID, docID domain.DocumentID) error {
	ctx, span := s.tracer.Start(ctx, "verification.verify_document")
	defer span.End()

	if _, err := s.drivers.FindByID(ctx, driverID); err != nil {
		return s.translate(err)
	}
	if err := s.documents.MarkVerified(ctx, driverID, docID); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeInvalidState, "document has been superseded")
		}
		return s.translate(err)
	}

	s.auditor.Emit(ctx, audit.Event{
		Type:     audit.EventDocumentVerified,
		DriverID: driverID,
		Metadata: map[string]string{"document_id": docID.String()},
	})
	return nil
}

func (s *Service) translate(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "driver profile not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "profile is not pending verification")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(dErrors.CodeUnavailable, "storage temporarily unavailable, retry the request", err)
	default:
		return dErrors.Wrap(dErrors.CodeInternal, "internal error", err)
	}
}
