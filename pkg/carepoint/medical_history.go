package carepoint

// Condition statuses.
const (
	ConditionActive   = "active"
	ConditionResolved = "resolved"
	ConditionChronic  = "chronic"
)

// Allergy severities.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// MedicalCondition is a diagnosed condition in the medical history.
type MedicalCondition struct {
	ID            string `json:"id"              yaml:"id"`
	Name          string `json:"name"            yaml:"name"`
	DiagnosedDate string `json:"diagnosedDate"   yaml:"diagnosed_date"`
	Status        string `json:"status"          yaml:"status"`
	Notes         string `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt     string `json:"createdAt"       yaml:"created_at"`
	UpdatedAt     string `json:"updatedAt"       yaml:"updated_at"`
}

// MedicalConditionRequest creates or patches a condition.
type MedicalConditionRequest struct {
	Name          string `json:"name,omitempty"`
	DiagnosedDate string `json:"diagnosedDate,omitempty"`
	Status        string `json:"status,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Surgery is a past operation.
type Surgery struct {
	ID        string `json:"id"                 yaml:"id"`
	Name      string `json:"name"               yaml:"name"`
	Date      string `json:"date"               yaml:"date"`
	Hospital  string `json:"hospital,omitempty" yaml:"hospital,omitempty"`
	Surgeon   string `json:"surgeon,omitempty"  yaml:"surgeon,omitempty"`
	Notes     string `json:"notes,omitempty"    yaml:"notes,omitempty"`
	CreatedAt string `json:"createdAt"          yaml:"created_at"`
	UpdatedAt string `json:"updatedAt"          yaml:"updated_at"`
}

// SurgeryRequest creates or patches a surgery.
type SurgeryRequest struct {
	Name     string `json:"name,omitempty"`
	Date     string `json:"date,omitempty"`
	Hospital string `json:"hospital,omitempty"`
	Surgeon  string `json:"surgeon,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Allergy is a known allergen and the reaction it causes.
type Allergy struct {
	ID        string `json:"id"              yaml:"id"`
	Allergen  string `json:"allergen"        yaml:"allergen"`
	Reaction  string `json:"reaction"        yaml:"reaction"`
	Severity  string `json:"severity"        yaml:"severity"`
	Notes     string `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt string `json:"createdAt"       yaml:"created_at"`
	UpdatedAt string `json:"updatedAt"       yaml:"updated_at"`
}

// AllergyRequest creates or patches an allergy.
type AllergyRequest struct {
	Allergen string `json:"allergen,omitempty"`
	Reaction string `json:"reaction,omitempty"`
	Severity string `json:"severity,omitempty"`
	Notes    string `json:"notes,omitempty"`
}
