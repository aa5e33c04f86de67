package domain

// RegistrationStep names one step of the onboarding pipeline. The fixed
// order is apply → documents → vehicle → submit → verification.
type RegistrationStep string

const (
	StepApply        RegistrationStep = "apply"
	StepDocuments    RegistrationStep = "documents"
	StepVehicle      RegistrationStep = "vehicle"
	StepSubmit       RegistrationStep = "submit"
	StepVerification RegistrationStep = "verification"
)

// PipelineSteps returns the steps in pipeline order.
func PipelineSteps() []RegistrationStep {
	return []RegistrationStep{StepApply, StepDocuments, StepVehicle, StepSubmit, StepVerification}
}

func (s RegistrationStep) String() string { return string(s) }
