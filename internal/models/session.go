package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentRole identifies which conversational persona is responsible for the
// current phase of the intake.
type AgentRole string

const (
	RoleVitalsTriage         AgentRole = "vitals_triage"
	RoleTriage               AgentRole = "triage"
	RoleClinicalInvestigator AgentRole = "clinical_investigator"
	RoleRecordsClerk         AgentRole = "records_clerk"
	RoleHistorySpecialist    AgentRole = "history_specialist"
	RoleHandoverSpecialist   AgentRole = "handover_specialist"
)

// Message is one chat turn in a session.
type Message struct {
	Role      string    `json:"role"` // "patient" or "assistant"
	AgentRole AgentRole `json:"agent_role,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	MessageRolePatient   = "patient"
	MessageRoleAssistant = "assistant"
)

// Session is the aggregate root for one patient intake conversation.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PatientID uuid.UUID `json:"patient_id" db:"patient_id"`

	History []Message     `json:"history" db:"history"`
	Record  MedicalRecord `json:"record" db:"record"`

	// HandoverReported guards the one-time clinician report.
	HandoverReported bool `json:"handover_reported" db:"handover_reported"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
