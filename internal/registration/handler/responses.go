package handler

import (
	"time"

	"driverhub/internal/document"
	"driverhub/internal/driver"
	"driverhub/internal/registration"
	"driverhub/internal/vehicle"
)

// ProfileResponse is the wire form of a driver profile.
type ProfileResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Status          string    `json:"status"`
	IsAvailable     bool      `json:"is_available"`
	LicenseNumber   string    `json:"license_number"`
	Timezone        string    `json:"timezone"`
	Phone           string    `json:"phone,omitempty"`
	Rating          float64   `json:"rating"`
	RatingCount     int       `json:"rating_count"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func fromProfile(p driver.Profile) ProfileResponse {
	return ProfileResponse{
		ID:              p.ID.String(),
		UserID:          p.UserID.String(),
		Status:          p.Status.String(),
		IsAvailable:     p.IsAvailable,
		LicenseNumber:   p.LicenseNumber,
		Timezone:        p.Timezone,
		Phone:           p.Phone,
		Rating:          p.Rating,
		RatingCount:     p.RatingCount,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
	}
}

// DocumentResponse is the wire form of a stored document. The payload is
// never echoed back; the storage reference is.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	StorageRef  string    `json:"storage_ref"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Verified    bool      `json:"verified"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func fromDocument(d document.Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID.String(),
		Type:        d.Type.String(),
		StorageRef:  d.StorageRef,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Verified:    d.Verified,
		UploadedAt:  d.UploadedAt,
	}
}

// VehicleResponse is the wire form of a registered vehicle.
type VehicleResponse struct {
	ID           string  `json:"id"`
	Make         string  `json:"make,omitempty"`
	Model        string  `json:"model,omitempty"`
	LicensePlate string  `json:"license_plate,omitempty"`
	MaxWeight    float64 `json:"max_weight"`
	MaxVolume    float64 `json:"max_volume"`
	MaxPackages  int     `json:"max_packages"`
}

func fromVehicle(v vehicle.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:           v.ID.String(),
		Make:         v.Make,
		Model:        v.Model,
		LicensePlate: v.LicensePlate,
		MaxWeight:    v.MaxWeightKg,
		MaxVolume:    v.MaxVolumeM3,
		MaxPackages:  v.MaxPackages,
	}
}

// StatusResponse is the wire form of the projected registration status.
type StatusResponse struct {
	DriverID       string   `json:"driver_id"`
	Status         string   `json:"status"`
	CompletedSteps []string `json:"completed_steps"`
	MissingItems   []string `json:"missing_items"`
	NextStep       string   `json:"next_step,omitempty"`
	IsComplete     bool     `json:"is_complete"`
}

func fromStatus(s registration.Status) StatusResponse {
	completed := make([]string, 0, len(s.CompletedSteps))
	for _, step := range s.CompletedSteps {
		completed = append(completed, step.String())
	}
	missing := s.MissingItems
	if missing == nil {
		missing = []string{}
	}
	return StatusResponse{
		DriverID:       s.DriverID.String(),
		Status:         s.DriverStatus.String(),
		CompletedSteps: completed,
		MissingItems:   missing,
		NextStep:       s.NextStep.String(),
		IsComplete:     s.IsComplete,
	}
}
