package registration

import (
	"driverhub/internal/document"
	"driverhub/internal/driver"
	"driverhub/internal/vehicle"
	"driverhub/pkg/domain"
)

// Status is the derived progress view of one registration. It is
// recomputed from stored facts on every read and never persisted, so it
// cannot drift from the orchestrator's transitions.
type Status struct {
	DriverID       domain.DriverID
	DriverStatus   domain.DriverStatus
	CompletedSteps []domain.RegistrationStep
	MissingItems   []string
	NextStep       domain.RegistrationStep
	IsComplete     bool
}

// Project computes the registration status from the profile, its current
// documents, and the optional vehicle. Pure function: no I/O, no clock.
//
// completed_steps and missing_items are computed independently so a caller
// can show exactly what blocks submit even while "documents" already counts
// as a visited step.
func Project(profile driver.Profile, docs []document.Document, veh *vehicle.Vehicle) Status {
	present := make(map[domain.DocumentType]bool, len(docs))
	for _, doc := range docs {
		present[doc.Type] = true
	}

	var missing []string
	for _, required := range domain.RequiredDocumentTypes() {
		if !present[required] {
			missing = append(missing, required.String())
		}
	}
	if veh == nil {
		missing = append(missing, "vehicle")
	}

	completed := []domain.RegistrationStep{domain.StepApply}
	if len(docs) > 0 {
		completed = append(completed, domain.StepDocuments)
	}
	if veh != nil {
		completed = append(completed, domain.StepVehicle)
	}
	submitted := profile.Status.Rank() >= domain.StatusPendingVerification.Rank()
	if submitted {
		completed = append(completed, domain.StepSubmit)
	}

	return Status{
		DriverID:       profile.ID,
		DriverStatus:   profile.Status,
		CompletedSteps: completed,
		MissingItems:   missing,
		NextStep:       nextStep(profile.Status, present, veh != nil, submitted),
		IsComplete:     profile.Status == domain.StatusVerified,
	}
}

// nextStep picks the first unsatisfied step in the fixed order
// documents → vehicle → submit → verification. The documents step is
// satisfied only once every required type has a current entry; verification
// is never satisfied here, only the gate resolves it.
func nextStep(status domain.DriverStatus, present map[domain.DocumentType]bool, hasVehicle, submitted bool) domain.RegistrationStep {
	if status.IsTerminal() {
		return ""
	}
	for _, required := range domain.RequiredDocumentTypes() {
		if !present[required] {
			return domain.StepDocuments
		}
	}
	if !hasVehicle {
		return domain.StepVehicle
	}
	if !submitted {
		return domain.StepSubmit
	}
	return domain.StepVerification
}
