package intake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medintake/internal/models"
	"medintake/internal/triage"
)

type fakeRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[uuid.UUID]*models.Session)}
}

func (r *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeRepo) Save(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

type fakeAgent struct {
	updates    []RecordUpdate
	calls      int
	reply      string
	replyErr   error
	extractErr error
	lastRole   models.AgentRole
}

func (a *fakeAgent) ExtractRecordUpdates(ctx context.Context, history []models.Message, record models.MedicalRecord) (RecordUpdate, error) {
	if a.extractErr != nil {
		return RecordUpdate{}, a.extractErr
	}
	if a.calls >= len(a.updates) {
		return RecordUpdate{}, nil
	}
	u := a.updates[a.calls]
	a.calls++
	return u, nil
}

func (a *fakeAgent) GenerateReply(ctx context.Context, role models.AgentRole, history []models.Message, record models.MedicalRecord) (string, error) {
	a.lastRole = role
	if a.replyErr != nil {
		return "", a.replyErr
	}
	if a.reply == "" {
		return "ok", nil
	}
	return a.reply, nil
}

// countingTriage wraps the real engine to count AnalyzeVitals invocations.
type countingTriage struct {
	inner    *triage.Service
	analyzed int
}

func (c *countingTriage) AnalyzeVitals(v models.VitalsRecord) triage.Result {
	c.analyzed++
	return c.inner.AnalyzeVitals(v)
}

func (c *countingTriage) DetectEmergency(v models.VitalsRecord) triage.EmergencyAssessment {
	return c.inner.DetectEmergency(v)
}

type fakeReport struct {
	mu    sync.Mutex
	sent  int
	errCh chan struct{}
}

func (f *fakeReport) SendHandoverReport(ctx context.Context, s models.Session) error {
	f.mu.Lock()
	f.sent++
	f.mu.Unlock()
	if f.errCh != nil {
		close(f.errCh)
	}
	return nil
}

func (f *fakeReport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}

func newTestService(t *testing.T, agent *fakeAgent) (Service, *fakeRepo, *countingTriage, *fakeReport) {
	t.Helper()
	repo := newFakeRepo()
	triageSvc := &countingTriage{inner: triage.NewService(triage.DefaultPolicy())}
	reportSvc := &fakeReport{}
	svc := NewService(repo, agent, triageSvc, reportSvc, zap.NewNop())
	return svc, repo, triageSvc, reportSvc
}

func TestCreateSession_StartsWithVitalsGreeting(t *testing.T) {
	svc, _, _, _ := newTestService(t, &fakeAgent{})

	sess, err := svc.CreateSession(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, sess.History, 1)
	assert.Equal(t, models.RoleVitalsTriage, sess.History[0].AgentRole)
	assert.Equal(t, models.TriagePending, sess.Record.Vitals.TriageDecision)
	assert.False(t, sess.Record.Vitals.StageCompleted)
}

func TestProcessPatientMessage_TriageRunsOncePerSession(t *testing.T) {
	agent := &fakeAgent{updates: []RecordUpdate{
		{CurrentStatus: "mild headache", VitalsCollected: true},
		{ChiefComplaint: "headache"},
	}}
	svc, repo, triageSvc, _ := newTestService(t, agent)

	sess, err := svc.CreateSession(context.Background(), uuid.New())
	require.NoError(t, err)

	result, err := svc.ProcessPatientMessage(context.Background(), sess.ID, "just a mild headache, that's all")
	require.NoError(t, err)
	assert.Equal(t, models.TriageDirectToDiagnosis, result.TriageDecision)
	assert.Equal(t, 1, triageSvc.analyzed)

	stored, err := repo.GetByID(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, stored.Record.Vitals.StageCompleted)
	assert.NotEmpty(t, stored.Record.Vitals.TriageReason)

	// Second turn: the stage is closed, the decision must not be recomputed.
	_, err = svc.ProcessPatientMessage(context.Background(), sess.ID, "my head hurts behind the eyes")
	require.NoError(t, err)
	assert.Equal(t, 1, triageSvc.analyzed)
}

func TestProcessPatientMessage_EmergencyWithoutVitals(t *testing.T) {
	// No vitals collected, no completion signal from the extractor: the
	// critical phrase alone must finalize an emergency decision this turn.
	agent := &fakeAgent{updates: []RecordUpdate{
		{CurrentStatus: "severe chest pain and difficulty breathing"},
	}}
	svc, repo, triageSvc, _ := newTestService(t, agent)

	sess, err := svc.CreateSession(context.Background(), uuid.New())
	require.NoError(t, err)

	result, err := svc.ProcessPatientMessage(context.Background(), sess.ID, "I have severe chest pain and difficulty breathing")
	require.NoError(t, err)

	assert.Equal(t, models.TriageEmergency, result.TriageDecision)
	assert.NotEmpty(t, result.EmergencyGuidance)
	assert.Equal(t, 1, triageSvc.analyzed)

	stored, err := repo.GetByID(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.True(t, stored.Record.Vitals.StageCompleted)
	assert.Equal(t, models.TriageEmergency, stored.Record.Vitals.TriageDecision)

	// The conversation resumes the normal chain after the emergency is
	// recorded: next unmet stage is the chief complaint.
	assert.Equal(t, models.RoleTriage, result.AgentRole)
}

func TestProcessPatientMessage_VitalsStageKeepsVitalsAgent(t *testing.T) {
	agent := &fakeAgent{updates: []RecordUpdate{
		{Temperature: &models.Measurement{Value: 36.9, Unit: "C", TakenAt: time.Now()}},
	}}
	svc, _, triageSvc, _ := newTestService(t, agent)

	sess, err := svc.CreateSession(context.Background(), uuid.New())
	require.NoError(t, err)

	result, err := svc.ProcessPatientMessage(context.Background(), sess.ID, "my temperature is 36.9")
	require.NoError(t, err)

	assert.Equal(t, models.RoleVitalsTriage, result.AgentRole)
	assert.Equal(t, models.TriagePending, result.TriageDecision)
	assert.Equal(t, 0, triageSvc.analyzed)
}

func TestProcessPatientMessage_ExtractionFailureDoesNotBlockTurn(t *testing.T) {
	agent := &fakeAgent{extractErr: errors.New("llm unavailable")}
	svc, _, _, _ := newTestService(t, agent)

	sess, err := svc.CreateSession(context.Background(), uuid.New())
	require.NoError(t, err)

	result, err := svc.ProcessPatientMessage(context.Background(), sess.ID, "hello?")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Reply)
}

func TestProcessPatientMessage_ReplyFailureFallsBack(t *testing.T) {
	agent := &fakeAgent{replyErr: errors.New("llm unavailable")}
	svc, repo, _, _ := newTestService(t, agent)

	sess, err := svc.CreateSession(context.Background(), uuid.New())
	require.NoError(t, err)

	result, err := svc.ProcessPatientMessage(context.Background(), sess.ID, "hello?")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, result.Reply)

	stored, err := repo.GetByID(context.Background(), sess.ID)
	require.NoError(t, err)
	last := stored.History[len(stored.History)-1]
	assert.Equal(t, models.MessageRoleAssistant, last.Role)
	assert.Equal(t, fallbackReply, last.Content)
}

func TestProcessPatientMessage_HandoverReportSentOnce(t *testing.T) {
	hpi := strings.Repeat("sharp pain in the lower back radiating down the left leg. ", 2)
	agent := &fakeAgent{updates: []RecordUpdate{
		{
			CurrentStatus:         "back pain",
			VitalsCollected:       true,
			ChiefComplaint:        "back pain",
			HPI:                   hpi,
			RecordsCheckCompleted: true,
			Medications:           []string{"ibuprofen"},
		},
		{},
	}}

	repo := newFakeRepo()
	triageSvc := &countingTriage{inner: triage.NewService(triage.DefaultPolicy())}
	reportSvc := &fakeReport{errCh: make(chan struct{})}
	svc := NewService(repo, agent, triageSvc, reportSvc, zap.NewNop())

	sess, err := svc.CreateSession(context.Background(), uuid.New())
	require.NoError(t, err)

	result, err := svc.ProcessPatientMessage(context.Background(), sess.ID, "everything in one go")
	require.NoError(t, err)
	assert.Equal(t, models.RoleHandoverSpecialist, result.AgentRole)

	select {
	case <-reportSvc.errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("handover report was not sent")
	}
	assert.Equal(t, 1, reportSvc.sentCount())

	// A further turn stays at handover and must not re-send the report.
	result, err = svc.ProcessPatientMessage(context.Background(), sess.ID, "thanks")
	require.NoError(t, err)
	assert.Equal(t, models.RoleHandoverSpecialist, result.AgentRole)
	assert.Equal(t, 1, reportSvc.sentCount())
}

func TestProcessPatientMessage_UnknownSession(t *testing.T) {
	svc, _, _, _ := newTestService(t, &fakeAgent{})

	_, err := svc.ProcessPatientMessage(context.Background(), uuid.New(), "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestApplyUpdate_NeverClearsFields(t *testing.T) {
	record := models.NewMedicalRecord()
	record.ChiefComplaint = "cough"
	record.Vitals.CurrentStatus = "coughing a lot"
	record.Medications = []string{"salbutamol"}
	record.RecordsCheckCompleted = true

	applyUpdate(&record, RecordUpdate{Medications: []string{"prednisone"}})

	assert.Equal(t, "cough", record.ChiefComplaint)
	assert.Equal(t, "coughing a lot", record.Vitals.CurrentStatus)
	assert.True(t, record.RecordsCheckCompleted)
	assert.Equal(t, []string{"salbutamol", "prednisone"}, record.Medications)
}

func TestApplyUpdate_AccumulatesHPI(t *testing.T) {
	record := models.NewMedicalRecord()

	applyUpdate(&record, RecordUpdate{HPI: "started three days ago"})
	applyUpdate(&record, RecordUpdate{HPI: "worse after meals"})

	assert.Equal(t, "started three days ago worse after meals", record.HPI)
}
