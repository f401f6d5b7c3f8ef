package models

import "time"

// TriageDecision classifies a session's vitals-stage findings. It transitions
// exactly once, from pending to one of the three terminal values.
type TriageDecision string

const (
	TriagePending           TriageDecision = "pending"
	TriageEmergency         TriageDecision = "emergency"
	TriageAgentAssisted     TriageDecision = "agent-assisted"
	TriageDirectToDiagnosis TriageDecision = "direct-to-diagnosis"
)

// Measurement is a single recorded vital: value, unit and when it was taken.
// The three fields are captured together; a nil *Measurement means the vital
// has not been collected yet.
type Measurement struct {
	Value   float64   `json:"value"`
	Unit    string    `json:"unit"`
	TakenAt time.Time `json:"taken_at"`
}

// BloodPressure is a collected blood-pressure reading. Systolic and diastolic
// are individually nullable: a partial capture (one number heard, the other
// missed) still counts as collected.
type BloodPressure struct {
	Systolic  *int      `json:"systolic"`
	Diastolic *int      `json:"diastolic"`
	TakenAt   time.Time `json:"taken_at"`
}

// VitalsRecord is the per-session snapshot of intake vitals. Any subset of
// fields may be absent; absence means "not yet collected", never an error.
type VitalsRecord struct {
	Temperature   *Measurement   `json:"temperature,omitempty"`
	Weight        *Measurement   `json:"weight,omitempty"`
	BloodPressure *BloodPressure `json:"blood_pressure,omitempty"`

	// CurrentStatus is the patient's free-text symptom description.
	CurrentStatus string `json:"current_status"`

	// StageCompleted flips to true when the triage decision has been made
	// and recorded. It never transitions back to false.
	StageCompleted bool           `json:"vitals_stage_completed"`
	TriageDecision TriageDecision `json:"triage_decision"`
	TriageReason   string         `json:"triage_reason,omitempty"`
}

// MedicalRecord is the cumulative structured intake data collected across the
// conversation. It is mutated field-by-field by the extraction step and never
// partially rolled back.
type MedicalRecord struct {
	ChiefComplaint        string   `json:"chief_complaint,omitempty"`
	HPI                   string   `json:"hpi,omitempty"`
	RecordsCheckCompleted bool     `json:"records_check_completed"`
	Medications           []string `json:"medications,omitempty"`
	Allergies             []string `json:"allergies,omitempty"`
	PastMedicalHistory    []string `json:"past_medical_history,omitempty"`

	Vitals VitalsRecord `json:"vitals"`
}

// NewMedicalRecord returns the empty record a session starts with: nothing
// collected, triage pending.
func NewMedicalRecord() MedicalRecord {
	return MedicalRecord{
		Vitals: VitalsRecord{TriageDecision: TriagePending},
	}
}
