package handler

import "driverhub/internal/registration"

// ApplyRequest is the driver application payload.
type ApplyRequest struct {
	LicenseNumber string `json:"license_number"`
	Timezone      string `json:"timezone,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

func (r ApplyRequest) toDomain() registration.ApplyRequest {
	return registration.ApplyRequest{
		LicenseNumber: r.LicenseNumber,
		Timezone:      r.Timezone,
		Phone:         r.Phone,
	}
}

// VehicleRequest is the vehicle registration payload. The capacity triple
// is required and must be positive.
type VehicleRequest struct {
	Make         string  `json:"make,omitempty"`
	Model        string  `json:"model,omitempty"`
	LicensePlate string  `json:"license_plate,omitempty"`
	MaxWeight    float64 `json:"max_weight"`
	MaxVolume    float64 `json:"max_volume"`
	MaxPackages  int     `json:"max_packages"`
}

func (r VehicleRequest) toDomain() registration.VehicleRequest {
	return registration.VehicleRequest{
		Make:         r.Make,
		Model:        r.Model,
		LicensePlate: r.LicensePlate,
		MaxWeightKg:  r.MaxWeight,
		MaxVolumeM3:  r.MaxVolume,
		MaxPackages:  r.MaxPackages,
	}
}

// AvailabilityRequest toggles a verified driver's availability.
type AvailabilityRequest struct {
	Available bool `json:"available"`
}
