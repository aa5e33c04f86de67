package handler_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"driverhub/internal/audit"
	"driverhub/internal/document"
	documentstore "driverhub/internal/document/store"
	driverstore "driverhub/internal/driver/store"
	"driverhub/internal/registration"
	"driverhub/internal/registration/handler"
	vehiclestore "driverhub/internal/vehicle/store"
	"driverhub/pkg/domain"
	"driverhub/pkg/testutil"
)

type discardAuditor struct{}

func (discardAuditor) Emit(context.Context, audit.Event) {}

type env struct {
	router chi.Router
	userID domain.UserID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	documents := document.NewAdapter(
		documentstore.NewInMemoryBlobStore(), documentstore.NewInMemoryStore(), 1<<20)
	service := registration.NewService(
		driverstore.NewInMemoryStore(), documents, vehiclestore.NewInMemoryStore(),
		discardAuditor{}, nil, logger)

	e := &env{userID: domain.NewUserID()}
	r := chi.NewRouter()
	// Stand-in for the auth middleware.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, testutil.WithUserID(req, e.userID))
		})
	})
	handler.New(service, logger, 1<<20).Register(r)
	e.router = r
	return e
}

func (e *env) apply(t *testing.T) string {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/drivers/apply", handler.ApplyRequest{
		LicenseNumber: "DL-5150",
	})
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return testutil.UnmarshalData[handler.ProfileResponse](t, rr).ID
}

func pdfBytes() []byte {
	return append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 32)...)
}

func TestApplyEndpoint(t *testing.T) {
	t.Run("creates a profile", func(t *testing.T) {
		e := newEnv(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/drivers/apply", handler.ApplyRequest{
			LicenseNumber: "DL-5150",
			Timezone:      "Europe/Berlin",
		})
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		profile := testutil.UnmarshalData[handler.ProfileResponse](t, rr)
		assert.Equal(t, "profile_created", profile.Status)
		assert.Equal(t, e.userID.String(), profile.UserID)
		assert.Equal(t, "Europe/Berlin", profile.Timezone)
	})

	t.Run("missing license number is a 400", func(t *testing.T) {
		e := newEnv(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/drivers/apply", handler.ApplyRequest{})
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("second application is a 409", func(t *testing.T) {
		e := newEnv(t)
		e.apply(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/drivers/apply", handler.ApplyRequest{
			LicenseNumber: "DL-5151",
		})
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "already_registered")
	})

	t.Run("unknown json field is a 400", func(t *testing.T) {
		e := newEnv(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/drivers/apply", map[string]any{
			"license_number": "DL-1", "surprise": true,
		})
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestUploadDocumentEndpoint(t *testing.T) {
	t.Run("stores a document", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		req := testutil.NewMultipartRequest(t, http.MethodPost, "/drivers/"+driverID+"/documents",
			map[string]string{"type": "license"}, "license.pdf", pdfBytes())
		rr := testutil.DoRequest(e.router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		doc := testutil.UnmarshalData[handler.DocumentResponse](t, rr)
		assert.Equal(t, "license", doc.Type)
		assert.Equal(t, "application/pdf", doc.ContentType)
		assert.NotEmpty(t, doc.StorageRef)
	})

	t.Run("unsupported type is a 400", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		req := testutil.NewMultipartRequest(t, http.MethodPost, "/drivers/"+driverID+"/documents",
			map[string]string{"type": "passport"}, "p.pdf", pdfBytes())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "unsupported_type")
	})

	t.Run("unsupported format is a 400", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		req := testutil.NewMultipartRequest(t, http.MethodPost, "/drivers/"+driverID+"/documents",
			map[string]string{"type": "license"}, "notes.txt", []byte("just some text"))
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "unsupported_format")
	})

	t.Run("oversized payloads are payload_too_large", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		// Just past the document limit: rejected by document validation.
		req := testutil.NewMultipartRequest(t, http.MethodPost, "/drivers/"+driverID+"/documents",
			map[string]string{"type": "license"}, "big.pdf",
			append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 1<<20)...))
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "payload_too_large")

		// Far past the transport cap: rejected before parsing completes,
		// with the same error code.
		req = testutil.NewMultipartRequest(t, http.MethodPost, "/drivers/"+driverID+"/documents",
			map[string]string{"type": "license"}, "huge.pdf",
			append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 3<<20)...))
		rr = testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "payload_too_large")
	})

	t.Run("missing file part is a 400", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/drivers/"+driverID+"/documents", nil)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("malformed driver id is a 400", func(t *testing.T) {
		e := newEnv(t)
		req := testutil.NewMultipartRequest(t, http.MethodPost, "/drivers/nope/documents",
			map[string]string{"type": "license"}, "l.pdf", pdfBytes())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("unknown driver is a 404", func(t *testing.T) {
		e := newEnv(t)
		req := testutil.NewMultipartRequest(t, http.MethodPost,
			"/drivers/"+domain.NewDriverID().String()+"/documents",
			map[string]string{"type": "license"}, "l.pdf", pdfBytes())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestVehicleAndSubmitEndpoints(t *testing.T) {
	uploadAll := func(t *testing.T, e *env, driverID string) {
		t.Helper()
		for _, dt := range domain.RequiredDocumentTypes() {
			req := testutil.NewMultipartRequest(t, http.MethodPost, "/drivers/"+driverID+"/documents",
				map[string]string{"type": dt.String()}, "doc.pdf", pdfBytes())
			rr := testutil.DoRequest(e.router, req)
			testutil.AssertStatus(t, rr, http.StatusCreated)
		}
	}
	addVehicle := func(t *testing.T, e *env, driverID string) {
		t.Helper()
		req := testutil.NewJSONRequest(t, http.MethodPost, "/drivers/"+driverID+"/vehicle", handler.VehicleRequest{
			Make: "Sprinter", MaxWeight: 900, MaxVolume: 11, MaxPackages: 120,
		})
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
	}

	t.Run("full pipeline over HTTP", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)
		uploadAll(t, e, driverID)
		addVehicle(t, e, driverID)

		rr := testutil.DoRequest(e.router, testutil.NewJSONRequest(t, http.MethodPost, "/drivers/"+driverID+"/submit", nil))
		testutil.AssertStatus(t, rr, http.StatusOK)
		profile := testutil.UnmarshalData[handler.ProfileResponse](t, rr)
		assert.Equal(t, "pending_verification", profile.Status)

		rr = testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/drivers/"+driverID+"/registration"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		status := testutil.UnmarshalData[handler.StatusResponse](t, rr)
		assert.Equal(t, "pending_verification", status.Status)
		assert.Empty(t, status.MissingItems)
		assert.Equal(t, "verification", status.NextStep)
		assert.False(t, status.IsComplete)
	})

	t.Run("invalid capacity is a 400", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/drivers/"+driverID+"/vehicle", handler.VehicleRequest{
			MaxWeight: 0, MaxVolume: 1, MaxPackages: 1,
		})
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_capacity")
	})

	t.Run("premature submit is a 409 without enumerating gaps", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		rr := testutil.DoRequest(e.router, testutil.NewJSONRequest(t, http.MethodPost, "/drivers/"+driverID+"/submit", nil))
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "incomplete_registration")
		errBody := testutil.UnmarshalError(t, rr)
		assert.NotContains(t, errBody.Message, "license")
		assert.NotContains(t, errBody.Message, "vehicle_registration")
	})

	t.Run("status enumerates the gaps instead", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/drivers/"+driverID+"/registration"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		status := testutil.UnmarshalData[handler.StatusResponse](t, rr)
		assert.ElementsMatch(t, []string{
			"license", "identity", "insurance", "vehicle_registration", "vehicle",
		}, status.MissingItems)
		assert.Equal(t, "documents", status.NextStep)
	})

	t.Run("availability before verification is a 409", func(t *testing.T) {
		e := newEnv(t)
		driverID := e.apply(t)

		req := testutil.NewJSONRequest(t, http.MethodPut, "/drivers/"+driverID+"/availability", handler.AvailabilityRequest{Available: true})
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "invalid_state")
	})
}

func TestOwnershipIsEnforced(t *testing.T) {
	e := newEnv(t)
	driverID := e.apply(t)

	// Same routes, different authenticated user.
	e.userID = domain.NewUserID()
	rr := testutil.DoRequest(e.router, testutil.NewRequest(t, http.MethodGet, "/drivers/"+driverID+"/registration"))
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")

	req := testutil.NewMultipartRequest(t, http.MethodPost, "/drivers/"+driverID+"/documents",
		map[string]string{"type": "license"}, "l.pdf", pdfBytes())
	rr = testutil.DoRequest(e.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
}
