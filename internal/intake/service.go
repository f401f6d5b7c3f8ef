package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medintake/internal/models"
	"medintake/internal/routing"
	"medintake/internal/triage"
)

// AgentClient defines the LLM interactions the intake service needs. We
// define it here to decouple from the specific client implementation.
type AgentClient interface {
	// ExtractRecordUpdates turns the latest conversation state into
	// structured medical-record updates. The service trusts the returned
	// values as given.
	ExtractRecordUpdates(ctx context.Context, history []models.Message, record models.MedicalRecord) (RecordUpdate, error)
	// GenerateReply produces the next assistant message in the voice of the
	// given agent persona.
	GenerateReply(ctx context.Context, role models.AgentRole, history []models.Message, record models.MedicalRecord) (string, error)
}

// ReportService defines the interface for delivering the handover report to
// the clinician.
type ReportService interface {
	SendHandoverReport(ctx context.Context, s models.Session) error
}

// TriageService is the decision engine consumed once per session while the
// vitals stage is open.
type TriageService interface {
	AnalyzeVitals(vitals models.VitalsRecord) triage.Result
	DetectEmergency(vitals models.VitalsRecord) triage.EmergencyAssessment
}

// RecordUpdate carries the structured field updates extracted from one turn.
// Zero-valued fields mean "nothing new"; updates only ever add to the record,
// they never clear already-collected fields.
type RecordUpdate struct {
	Temperature   *models.Measurement   `json:"temperature,omitempty"`
	Weight        *models.Measurement   `json:"weight,omitempty"`
	BloodPressure *models.BloodPressure `json:"blood_pressure,omitempty"`
	CurrentStatus string                `json:"current_status,omitempty"`

	ChiefComplaint        string   `json:"chief_complaint,omitempty"`
	HPI                   string   `json:"hpi,omitempty"`
	RecordsCheckCompleted bool     `json:"records_check_completed,omitempty"`
	Medications           []string `json:"medications,omitempty"`
	Allergies             []string `json:"allergies,omitempty"`
	PastMedicalHistory    []string `json:"past_medical_history,omitempty"`

	// VitalsCollected signals that the vitals conversation has covered
	// everything it is going to; it tells the service to finalize triage.
	VitalsCollected bool `json:"vitals_collected,omitempty"`
}

// TurnResult is what one processed patient message produces.
type TurnResult struct {
	Reply          string                `json:"reply"`
	AgentRole      models.AgentRole      `json:"agent_role"`
	TriageDecision models.TriageDecision `json:"triage_decision"`
	// EmergencyGuidance is set on the turn an emergency decision is made.
	EmergencyGuidance []string `json:"emergency_guidance,omitempty"`
}

type Service interface {
	CreateSession(ctx context.Context, patientID uuid.UUID) (*models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ProcessPatientMessage(ctx context.Context, sessionID uuid.UUID, text string) (*TurnResult, error)
}

type service struct {
	repo      Repository
	aiClient  AgentClient
	triageSvc TriageService
	reportSvc ReportService
	logger    *zap.Logger

	// determineAgent is the routing priority chain; injectable for tests.
	determineAgent func(models.MedicalRecord) models.AgentRole
}

func NewService(repo Repository, ai AgentClient, triageSvc TriageService, report ReportService, logger *zap.Logger) Service {
	return &service{
		repo:           repo,
		aiClient:       ai,
		triageSvc:      triageSvc,
		reportSvc:      report,
		logger:         logger,
		determineAgent: routing.DetermineAgent,
	}
}

func (s *service) CreateSession(ctx context.Context, patientID uuid.UUID) (*models.Session, error) {
	sess := &models.Session{
		ID:        uuid.New(),
		PatientID: patientID,
		Record:    models.NewMedicalRecord(),
		History: []models.Message{{
			Role:      models.MessageRoleAssistant,
			AgentRole: models.RoleVitalsTriage,
			Content:   greetingMessage,
			Timestamp: time.Now(),
		}},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *service) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return s.repo.GetByID(ctx, id)
}

// ProcessPatientMessage runs one conversational turn: apply the turn's
// extracted record updates, finalize the triage decision if the vitals stage
// just closed, route to the responsible agent persona and generate its reply.
func (s *service) ProcessPatientMessage(ctx context.Context, sessionID uuid.UUID, text string) (*TurnResult, error) {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.History = append(sess.History, models.Message{
		Role: models.MessageRolePatient, Content: text, Timestamp: time.Now(),
	})

	update, err := s.aiClient.ExtractRecordUpdates(ctx, sess.History, sess.Record)
	if err != nil {
		// Extraction failing must not block the conversation; the record
		// simply does not advance this turn.
		s.logger.Warn("record extraction failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		update = RecordUpdate{}
	}
	applyUpdate(&sess.Record, update)

	result := &TurnResult{}

	// The triage decision is made at most once per session. The emergency
	// check runs on every open-stage turn so a critical symptom phrase is
	// acted on immediately, even with no vitals collected at all.
	if !sess.Record.Vitals.StageCompleted {
		assessment := s.triageSvc.DetectEmergency(sess.Record.Vitals)
		if assessment.IsEmergency || update.VitalsCollected {
			triageResult := s.triageSvc.AnalyzeVitals(sess.Record.Vitals)
			sess.Record.Vitals.TriageDecision = triageResult.Decision
			sess.Record.Vitals.TriageReason = triageResult.Reason
			sess.Record.Vitals.StageCompleted = true
			result.EmergencyGuidance = assessment.Recommendations

			s.logger.Info("triage decision recorded",
				zap.String("session_id", sessionID.String()),
				zap.String("decision", string(triageResult.Decision)),
				zap.Strings("factors", triageResult.Factors),
				zap.Float64("confidence", triageResult.Confidence),
			)
		}
	}
	result.TriageDecision = sess.Record.Vitals.TriageDecision

	role := s.determineAgent(sess.Record)
	result.AgentRole = role

	reply, err := s.aiClient.GenerateReply(ctx, role, sess.History, sess.Record)
	if err != nil {
		s.logger.Error("reply generation failed", zap.String("session_id", sessionID.String()), zap.Error(err))
		reply = fallbackReply
	}
	result.Reply = reply

	sess.History = append(sess.History, models.Message{
		Role: models.MessageRoleAssistant, AgentRole: role, Content: reply, Timestamp: time.Now(),
	})

	// First arrival at handover: notify the clinician once, off the request
	// path. The conversation itself stays open; closing the session is the
	// surrounding system's call.
	if role == models.RoleHandoverSpecialist && !sess.HandoverReported {
		sess.HandoverReported = true
		go func(snapshot models.Session) {
			bgCtx := context.Background()
			if err := s.reportSvc.SendHandoverReport(bgCtx, snapshot); err != nil {
				s.logger.Error("handover report failed",
					zap.String("session_id", snapshot.ID.String()), zap.Error(err))
			}
		}(*sess)
	}

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return result, nil
}

// applyUpdate merges one turn's extracted fields into the record. The merge
// is additive: lists append, narrative text accumulates, collected vitals and
// completed flags are never un-set.
func applyUpdate(record *models.MedicalRecord, update RecordUpdate) {
	if update.Temperature != nil {
		record.Vitals.Temperature = update.Temperature
	}
	if update.Weight != nil {
		record.Vitals.Weight = update.Weight
	}
	if update.BloodPressure != nil {
		record.Vitals.BloodPressure = update.BloodPressure
	}
	if update.CurrentStatus != "" {
		record.Vitals.CurrentStatus = update.CurrentStatus
	}

	if update.ChiefComplaint != "" {
		record.ChiefComplaint = update.ChiefComplaint
	}
	if update.HPI != "" {
		if record.HPI == "" {
			record.HPI = update.HPI
		} else {
			record.HPI = record.HPI + " " + update.HPI
		}
	}
	if update.RecordsCheckCompleted {
		record.RecordsCheckCompleted = true
	}
	record.Medications = append(record.Medications, update.Medications...)
	record.Allergies = append(record.Allergies, update.Allergies...)
	record.PastMedicalHistory = append(record.PastMedicalHistory, update.PastMedicalHistory...)
}
