package triage

import (
	"fmt"
	"strings"

	"medintake/internal/models"
)

// Result is the one-time triage classification of a session's vitals stage.
type Result struct {
	Decision   models.TriageDecision `json:"decision"`
	Reason     string                `json:"reason"`
	Factors    []string              `json:"factors"`
	Confidence float64               `json:"confidence"`
}

// Service produces the triage decision for a session. AnalyzeVitals is pure;
// it is the caller's job to persist the result exactly once and never
// re-invoke it for the same session afterwards.
type Service struct {
	policy   Policy
	detector *Detector
}

// NewService builds the triage decision service and its emergency detector
// from one policy.
func NewService(policy Policy) *Service {
	return &Service{
		policy:   policy,
		detector: NewDetector(policy),
	}
}

// DetectEmergency runs the emergency detector alone, for callers that need a
// per-turn emergency check without committing a triage decision.
func (s *Service) DetectEmergency(vitals models.VitalsRecord) EmergencyAssessment {
	return s.detector.DetectEmergency(vitals)
}

// AnalyzeVitals classifies the vitals-stage findings. Ordered, first match
// wins: emergency indicators trump everything (and never require vitals to be
// fully collected); otherwise conversational complexity decides between
// agent-assisted and direct-to-diagnosis. Missing data never errors — it is
// folded into the factors and nudges toward agent assistance.
func (s *Service) AnalyzeVitals(vitals models.VitalsRecord) Result {
	if assessment := s.detector.DetectEmergency(vitals); assessment.IsEmergency {
		factors := make([]string, 0, len(assessment.Indicators))
		for _, ind := range assessment.Indicators {
			factors = append(factors, ind.Detail)
		}
		return Result{
			Decision:   models.TriageEmergency,
			Reason:     "emergency indicators detected: " + strings.Join(factors, "; "),
			Factors:    factors,
			Confidence: 1.0,
		}
	}

	missing := vitals.MissingVitals()
	signals := s.complexitySignals(vitals)

	var factors []string
	for _, field := range missing {
		factors = append(factors, field+" not collected")
	}
	factors = append(factors, signals...)

	score := float64(len(missing))*s.policy.MissingVitalWeight +
		float64(len(signals))*s.policy.SignalWeight

	if score >= s.policy.ComplexityThreshold {
		return Result{
			Decision:   models.TriageAgentAssisted,
			Reason:     "presentation needs guided questioning before diagnosis",
			Factors:    factors,
			Confidence: clamp(1.0-0.1*float64(len(factors)), 0.5, 0.9),
		}
	}

	if len(factors) == 0 {
		factors = []string{"vitals within normal limits, simple presentation"}
	}
	return Result{
		Decision:   models.TriageDirectToDiagnosis,
		Reason:     "no emergency or complexity indicators",
		Factors:    factors,
		Confidence: clamp(0.95-0.05*float64(len(missing)), 0.7, 0.95),
	}
}

// complexitySignals collects the non-critical findings that make a guided
// conversation worthwhile. Each entry counts once toward the complexity score.
func (s *Service) complexitySignals(vitals models.VitalsRecord) []string {
	var signals []string
	status := strings.ToLower(vitals.CurrentStatus)

	if n := countKeywords(status, s.policy.SymptomKeywords); n >= 2 {
		signals = append(signals, fmt.Sprintf("multiple concurrent symptoms reported (%d)", n))
	}
	if matches := matchKeywords(status, s.policy.ChronicKeywords); len(matches) > 0 {
		signals = append(signals, "chronic condition mentioned: "+strings.Join(matches, ", "))
	}
	if matches := matchKeywords(status, s.policy.DurationKeywords); len(matches) > 0 {
		signals = append(signals, "prolonged duration described: "+strings.Join(matches, ", "))
	}

	if celsius, ok := vitals.TemperatureCelsius(); ok &&
		celsius >= s.policy.TempElevatedC && celsius < s.policy.TempHighC {
		signals = append(signals, fmt.Sprintf("elevated temperature: %.1f°C", celsius))
	}
	if bp := vitals.BloodPressure; bp != nil && bp.Systolic != nil && bp.Diastolic != nil {
		elevated := *bp.Systolic >= s.policy.SystolicElevated || *bp.Diastolic >= s.policy.DiastolicElevated
		crisis := *bp.Systolic >= s.policy.SystolicCrisis || *bp.Diastolic >= s.policy.DiastolicCrisis
		if elevated && !crisis {
			signals = append(signals, fmt.Sprintf("elevated blood pressure: %d/%d", *bp.Systolic, *bp.Diastolic))
		}
	}
	return signals
}

func countKeywords(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			count++
		}
	}
	return count
}

func matchKeywords(text string, keywords []string) []string {
	var matches []string
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			matches = append(matches, kw)
		}
	}
	return matches
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
