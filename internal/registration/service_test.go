package registration_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driverhub/internal/audit"
	"driverhub/internal/document"
	documentstore "driverhub/internal/document/store"
	driverstore "driverhub/internal/driver/store"
	"driverhub/internal/registration"
	vehiclestore "driverhub/internal/vehicle/store"
	"driverhub/internal/verification"
	"driverhub/pkg/domain"
	dErrors "driverhub/pkg/domain-errors"
)

// recordingAuditor captures emitted events for assertions.
type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func (r *recordingAuditor) types() []audit.EventType {
	out := make([]audit.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	service   *registration.Service
	drivers   *driverstore.InMemoryStore
	documents *document.Adapter
	vehicles  *vehiclestore.InMemoryStore
	auditor   *recordingAuditor
	logger    *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	drivers := driverstore.NewInMemoryStore()
	vehicles := vehiclestore.NewInMemoryStore()
	documents := document.NewAdapter(
		documentstore.NewInMemoryBlobStore(), documentstore.NewInMemoryStore(), 1<<20)
	auditor := &recordingAuditor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service:   registration.NewService(drivers, documents, vehicles, auditor, nil, logger),
		drivers:   drivers,
		documents: documents,
		vehicles:  vehicles,
		auditor:   auditor,
		logger:    logger,
	}
}

func pdf(filler int) []byte {
	return append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'a'}, filler)...)
}

func validVehicle() registration.VehicleRequest {
	return registration.VehicleRequest{
		Make:         "Sprinter",
		LicensePlate: "B-XW-1234",
		MaxWeightKg:  900,
		MaxVolumeM3:  11,
		MaxPackages:  120,
	}
}

func (f *fixture) apply(t *testing.T, ctx context.Context, userID domain.UserID) domain.DriverID {
	t.Helper()
	profile, err := f.service.Apply(ctx, userID, registration.ApplyRequest{LicenseNumber: "DL-9911"})
	require.NoError(t, err)
	return profile.ID
}

func (f *fixture) uploadAllDocuments(t *testing.T, ctx context.Context, userID domain.UserID, driverID domain.DriverID) {
	t.Helper()
	for _, dt := range domain.RequiredDocumentTypes() {
		_, err := f.service.UploadDocument(ctx, userID, driverID, dt, pdf(10))
		require.NoError(t, err)
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the profile at profile_created", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()

		profile, err := f.service.Apply(ctx, userID, registration.ApplyRequest{
			LicenseNumber: "DL-9911",
			Timezone:      "Europe/Berlin",
			Phone:         "+491701234567",
		})
		require.NoError(t, err)

		assert.False(t, profile.ID.IsZero())
		assert.Equal(t, userID, profile.UserID)
		assert.Equal(t, domain.StatusProfileCreated, profile.Status)
		assert.Equal(t, "Europe/Berlin", profile.Timezone)
		assert.False(t, profile.IsAvailable)
		assert.Equal(t, []audit.EventType{audit.EventDriverApplied}, f.auditor.types())
	})

	t.Run("defaults timezone to UTC", func(t *testing.T) {
		f := newFixture(t)
		profile, err := f.service.Apply(ctx, domain.NewUserID(), registration.ApplyRequest{LicenseNumber: "DL-1"})
		require.NoError(t, err)
		assert.Equal(t, "UTC", profile.Timezone)
	})

	t.Run("rejects missing license number", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Apply(ctx, domain.NewUserID(), registration.ApplyRequest{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Apply(ctx, domain.NewUserID(), registration.ApplyRequest{
			LicenseNumber: "DL-1", Timezone: "Mars/Olympus",
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("second application conflicts", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		f.apply(t, ctx, userID)

		_, err := f.service.Apply(ctx, userID, registration.ApplyRequest{LicenseNumber: "DL-2"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))
	})
}

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("first upload advances to documents_submitted", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)

		doc, err := f.service.UploadDocument(ctx, userID, driverID, domain.DocumentTypeLicense, pdf(10))
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentTypeLicense, doc.Type)

		profile, err := f.drivers.FindByID(ctx, driverID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDocumentsSubmitted, profile.Status)
	})

	t.Run("upload after vehicle never regresses status", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		_, err := f.service.AddVehicle(ctx, userID, driverID, validVehicle())
		require.NoError(t, err)

		_, err = f.service.UploadDocument(ctx, userID, driverID, domain.DocumentTypeLicense, pdf(10))
		require.NoError(t, err)

		profile, err := f.drivers.FindByID(ctx, driverID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusVehicleAdded, profile.Status,
			"documents_submitted ranks below vehicle_added")
	})

	t.Run("validation errors pass through", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)

		_, err := f.service.UploadDocument(ctx, userID, driverID, domain.DocumentTypeLicense, []byte("not a document"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedFormat))

		// Status untouched on rejected upload.
		profile, ferr := f.drivers.FindByID(ctx, driverID)
		require.NoError(t, ferr)
		assert.Equal(t, domain.StatusProfileCreated, profile.Status)
	})

	t.Run("foreign profile is forbidden", func(t *testing.T) {
		f := newFixture(t)
		ownerID := domain.NewUserID()
		driverID := f.apply(t, ctx, ownerID)

		_, err := f.service.UploadDocument(ctx, domain.NewUserID(), driverID, domain.DocumentTypeLicense, pdf(10))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("unknown driver", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.UploadDocument(ctx, domain.NewUserID(), domain.NewDriverID(), domain.DocumentTypeLicense, pdf(10))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("terminal profile refuses uploads", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		require.NoError(t, f.drivers.SetStatus(ctx, driverID, domain.StatusProfileCreated, domain.StatusDeactivated))

		_, err := f.service.UploadDocument(ctx, userID, driverID, domain.DocumentTypeLicense, pdf(10))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("full pipeline reaches pending_verification", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		f.uploadAllDocuments(t, ctx, userID, driverID)
		_, err := f.service.AddVehicle(ctx, userID, driverID, validVehicle())
		require.NoError(t, err)

		profile, err := f.service.Submit(ctx, userID, driverID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingVerification, profile.Status)
		assert.Contains(t, f.auditor.types(), audit.EventRegistrationSubmitted)
	})

	t.Run("incomplete registration does not enumerate gaps", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		_, err := f.service.AddVehicle(ctx, userID, driverID, validVehicle())
		require.NoError(t, err)

		_, err = f.service.Submit(ctx, userID, driverID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeIncompleteRegistration))
		for _, dt := range domain.RequiredDocumentTypes() {
			assert.NotContains(t, dErrors.MessageOf(err), dt.String())
		}

		// The projector is where the gaps are enumerated.
		status, err := f.service.GetStatus(ctx, userID, driverID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"license", "identity", "insurance", "vehicle_registration",
		}, status.MissingItems)
	})

	t.Run("missing vehicle blocks submit", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		f.uploadAllDocuments(t, ctx, userID, driverID)

		_, err := f.service.Submit(ctx, userID, driverID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeIncompleteRegistration))
	})

	t.Run("resubmit is idempotent", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		f.uploadAllDocuments(t, ctx, userID, driverID)
		_, err := f.service.AddVehicle(ctx, userID, driverID, validVehicle())
		require.NoError(t, err)

		_, err = f.service.Submit(ctx, userID, driverID)
		require.NoError(t, err)
		before := len(f.auditor.events)

		profile, err := f.service.Submit(ctx, userID, driverID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingVerification, profile.Status)
		assert.Len(t, f.auditor.events, before, "no duplicate submit event")
	})

	t.Run("resubmit clears a prior soft rejection", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		f.uploadAllDocuments(t, ctx, userID, driverID)
		_, err := f.service.AddVehicle(ctx, userID, driverID, validVehicle())
		require.NoError(t, err)
		_, err = f.service.Submit(ctx, userID, driverID)
		require.NoError(t, err)

		// The gate bounces it back: still pending, reason recorded.
		gate := verification.NewService(f.drivers, f.documents, f.auditor, f.logger)
		rejected, err := gate.Reject(ctx, driverID, "license photo unreadable", false)
		require.NoError(t, err)
		require.Equal(t, domain.StatusPendingVerification, rejected.Status)
		require.Equal(t, "license photo unreadable", rejected.RejectionReason)

		profile, err := f.service.Submit(ctx, userID, driverID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPendingVerification, profile.Status)
		assert.Empty(t, profile.RejectionReason)
		assert.Equal(t, audit.EventRegistrationSubmitted, f.auditor.events[len(f.auditor.events)-1].Type,
			"resubmission records a fresh submit event")
	})

	t.Run("deactivated profile cannot submit", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		require.NoError(t, f.drivers.SetStatus(ctx, driverID, domain.StatusProfileCreated, domain.StatusDeactivated))

		_, err := f.service.Submit(ctx, userID, driverID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestAddVehicle(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)

		req := validVehicle()
		req.MaxPackages = 0
		_, err := f.service.AddVehicle(ctx, userID, driverID, req)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCapacity))
	})

	t.Run("replaces the prior vehicle", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)

		first, err := f.service.AddVehicle(ctx, userID, driverID, validVehicle())
		require.NoError(t, err)

		req := validVehicle()
		req.Make = "Transit"
		second, err := f.service.AddVehicle(ctx, userID, driverID, req)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "replace keeps vehicle identity")
		assert.Equal(t, "Transit", second.Make)
	})

	t.Run("terminal profile refuses vehicle changes", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		require.NoError(t, f.drivers.SetStatus(ctx, driverID, domain.StatusProfileCreated, domain.StatusDeactivated))

		_, err := f.service.AddVehicle(ctx, userID, driverID, validVehicle())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	userID := domain.NewUserID()
	driverID := f.apply(t, ctx, userID)

	status, err := f.service.GetStatus(ctx, userID, driverID)
	require.NoError(t, err)
	assert.Equal(t, driverID, status.DriverID)
	assert.Equal(t, domain.StepDocuments, status.NextStep)

	_, err = f.service.GetStatus(ctx, domain.NewUserID(), driverID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestSetAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("only verified drivers", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)

		_, err := f.service.SetAvailability(ctx, userID, driverID, true)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("verified driver toggles", func(t *testing.T) {
		f := newFixture(t)
		userID := domain.NewUserID()
		driverID := f.apply(t, ctx, userID)
		_, err := f.drivers.AdvanceStatus(ctx, driverID, domain.StatusVerified)
		require.NoError(t, err)

		profile, err := f.service.SetAvailability(ctx, userID, driverID, true)
		require.NoError(t, err)
		assert.True(t, profile.IsAvailable)
	})
}
