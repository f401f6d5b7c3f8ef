package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"

	"medintake/internal/models"
)

type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

// Service renders the completed intake record as a PDF and delivers it to the
// clinician's chat when a session reaches handover.
type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	logger       *zap.Logger
}

func NewService(tg TelegramClient, doctorChatID int64, logger *zap.Logger) *Service {
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		logger:       logger,
	}
}

func (s *Service) SendHandoverReport(ctx context.Context, sess models.Session) error {
	s.logger.Info("generating handover report", zap.String("session_id", sess.ID.String()))

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	// Try multiple common font paths for Alpine/Debian images.
	fontPaths := []string{
		"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	}
	var fontErr error
	fontLoaded := false
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return fmt.Errorf("failed to load font for PDF, ensure ttf-dejavu is installed: %w", fontErr)
	}

	writeLine := func(size float64, text string) error {
		if err := pdf.SetFont("DejaVu", "", size); err != nil {
			return err
		}
		lines, _ := pdf.SplitText(text, 500)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(size + 3)
		}
		return nil
	}

	rec := sess.Record
	if err := writeLine(20, "Intake Handover Report"); err != nil {
		return err
	}
	pdf.Br(10)
	_ = writeLine(12, fmt.Sprintf("Date: %s", time.Now().Format("02.01.2006 15:04")))
	_ = writeLine(12, fmt.Sprintf("Patient ID: %s", sess.PatientID))
	_ = writeLine(12, fmt.Sprintf("Session ID: %s", sess.ID))
	pdf.Br(10)

	_ = writeLine(14, "Triage")
	_ = writeLine(11, fmt.Sprintf("Decision: %s", rec.Vitals.TriageDecision))
	if rec.Vitals.TriageReason != "" {
		_ = writeLine(11, fmt.Sprintf("Reason: %s", rec.Vitals.TriageReason))
	}
	pdf.Br(8)

	_ = writeLine(14, "Vitals")
	if rec.Vitals.Temperature != nil {
		_ = writeLine(11, fmt.Sprintf("- Temperature: %.1f %s", rec.Vitals.Temperature.Value, rec.Vitals.Temperature.Unit))
	}
	if rec.Vitals.Weight != nil {
		_ = writeLine(11, fmt.Sprintf("- Weight: %.1f %s", rec.Vitals.Weight.Value, rec.Vitals.Weight.Unit))
	}
	if bp := rec.Vitals.BloodPressure; bp != nil {
		_ = writeLine(11, fmt.Sprintf("- Blood pressure: %s/%s", intOrDash(bp.Systolic), intOrDash(bp.Diastolic)))
	}
	if rec.Vitals.CurrentStatus != "" {
		_ = writeLine(11, fmt.Sprintf("- Reported status: %s", rec.Vitals.CurrentStatus))
	}
	pdf.Br(8)

	_ = writeLine(14, "Complaint & History")
	_ = writeLine(11, "Chief complaint: "+orNone(rec.ChiefComplaint))
	_ = writeLine(11, "History of present illness: "+orNone(rec.HPI))
	pdf.Br(8)

	_ = writeLine(14, "Past History")
	_ = writeLine(11, "Medications: "+listOrNone(rec.Medications))
	_ = writeLine(11, "Allergies: "+listOrNone(rec.Allergies))
	_ = writeLine(11, "Past medical history: "+listOrNone(rec.PastMedicalHistory))

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	fileName := fmt.Sprintf("intake_%s.pdf", sess.ID.String())
	if err := s.tgClient.SendDocument(s.doctorChatID, buf.Bytes(), fileName); err != nil {
		return fmt.Errorf("failed to deliver handover report: %w", err)
	}
	s.logger.Info("handover report sent", zap.String("session_id", sess.ID.String()))
	return nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not recorded)"
	}
	return s
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none reported)"
	}
	return strings.Join(items, ", ")
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}
