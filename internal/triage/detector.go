package triage

import (
	"fmt"
	"strings"

	"medintake/internal/models"
)

// IndicatorType names the class of finding that raised an emergency flag.
type IndicatorType string

const (
	IndicatorTemperature   IndicatorType = "temperature"
	IndicatorBloodPressure IndicatorType = "blood_pressure"
	IndicatorSymptoms      IndicatorType = "symptoms"
)

// Indicator is a single emergency finding.
type Indicator struct {
	Type   IndicatorType `json:"type"`
	Detail string        `json:"detail"`
}

// EmergencyAssessment is the detector's verdict over one vitals snapshot.
type EmergencyAssessment struct {
	IsEmergency     bool        `json:"is_emergency"`
	Indicators      []Indicator `json:"indicators"`
	Recommendations []string    `json:"recommendations"`
}

// Detector scans a vitals snapshot for emergency indicators. It is a pure
// computation: no I/O, no state, safe for concurrent use.
type Detector struct {
	policy Policy
}

// NewDetector builds a detector around the given clinical policy.
func NewDetector(policy Policy) *Detector {
	return &Detector{policy: policy}
}

// DetectEmergency evaluates the three indicator classes independently and
// unions the findings, so multiple indicators may fire on one snapshot. A
// snapshot with nothing collected yields a non-emergency result with no
// indicators. It never fails.
func (d *Detector) DetectEmergency(vitals models.VitalsRecord) EmergencyAssessment {
	var indicators []Indicator

	if ind, ok := d.checkTemperature(vitals); ok {
		indicators = append(indicators, ind)
	}
	if ind, ok := d.checkBloodPressure(vitals); ok {
		indicators = append(indicators, ind)
	}
	if ind, ok := d.checkSymptoms(vitals); ok {
		indicators = append(indicators, ind)
	}

	assessment := EmergencyAssessment{
		IsEmergency: len(indicators) > 0,
		Indicators:  indicators,
	}
	if assessment.IsEmergency {
		assessment.Recommendations = []string{
			"Contact emergency services immediately",
			"Do not wait for the intake conversation to finish",
		}
	}
	return assessment
}

func (d *Detector) checkTemperature(vitals models.VitalsRecord) (Indicator, bool) {
	celsius, ok := vitals.TemperatureCelsius()
	if !ok {
		return Indicator{}, false
	}
	switch {
	case celsius >= d.policy.TempHighC:
		return Indicator{
			Type:   IndicatorTemperature,
			Detail: fmt.Sprintf("critically high temperature: %.1f°C", celsius),
		}, true
	case celsius <= d.policy.TempLowC:
		return Indicator{
			Type:   IndicatorTemperature,
			Detail: fmt.Sprintf("critically low temperature: %.1f°C", celsius),
		}, true
	}
	return Indicator{}, false
}

func (d *Detector) checkBloodPressure(vitals models.VitalsRecord) (Indicator, bool) {
	bp := vitals.BloodPressure
	// A partial reading cannot fire; completeness gaps are the caller's to
	// report.
	if bp == nil || bp.Systolic == nil || bp.Diastolic == nil {
		return Indicator{}, false
	}
	if *bp.Systolic >= d.policy.SystolicCrisis || *bp.Diastolic >= d.policy.DiastolicCrisis {
		return Indicator{
			Type:   IndicatorBloodPressure,
			Detail: fmt.Sprintf("hypertensive crisis range: %d/%d", *bp.Systolic, *bp.Diastolic),
		}, true
	}
	return Indicator{}, false
}

func (d *Detector) checkSymptoms(vitals models.VitalsRecord) (Indicator, bool) {
	status := strings.ToLower(vitals.CurrentStatus)
	if strings.TrimSpace(status) == "" {
		return Indicator{}, false
	}
	var matched []string
	for _, phrase := range d.policy.CriticalSymptoms {
		if !strings.Contains(status, strings.ToLower(phrase)) {
			continue
		}
		// "chest pain" adds nothing once "severe chest pain" matched.
		redundant := false
		for _, m := range matched {
			if strings.Contains(strings.ToLower(m), strings.ToLower(phrase)) {
				redundant = true
				break
			}
		}
		if !redundant {
			matched = append(matched, phrase)
		}
	}
	if len(matched) == 0 {
		return Indicator{}, false
	}
	return Indicator{
		Type:   IndicatorSymptoms,
		Detail: "critical symptoms reported: " + strings.Join(matched, ", "),
	}, true
}
