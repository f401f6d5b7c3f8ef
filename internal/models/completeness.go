package models

import "strings"

// MinHPILength is the trimmed length at which the history of present illness
// is considered sufficient for the records stage to begin.
const MinHPILength = 50

// HasChiefComplaint reports whether a chief complaint has been captured.
// Whitespace-only text does not count.
func (r MedicalRecord) HasChiefComplaint() bool {
	return strings.TrimSpace(r.ChiefComplaint) != ""
}

// HPISufficient reports whether the history of present illness is detailed
// enough to move on from clinical investigation.
func (r MedicalRecord) HPISufficient() bool {
	return len(strings.TrimSpace(r.HPI)) >= MinHPILength
}

// HistoryPresent reports whether at least one of medications, allergies or
// past medical history has been collected.
func (r MedicalRecord) HistoryPresent() bool {
	return len(r.Medications) > 0 || len(r.Allergies) > 0 || len(r.PastMedicalHistory) > 0
}

// MissingVitals lists the vitals groups that have not been collected yet, in
// a fixed order. A blood-pressure group missing either number is reported as
// incomplete rather than missing.
func (v VitalsRecord) MissingVitals() []string {
	var missing []string
	if v.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if v.Weight == nil {
		missing = append(missing, "weight")
	}
	if v.BloodPressure == nil {
		missing = append(missing, "blood pressure")
	} else if v.BloodPressure.Systolic == nil || v.BloodPressure.Diastolic == nil {
		missing = append(missing, "blood pressure (partial reading)")
	}
	return missing
}

// TemperatureCelsius returns the collected temperature normalized to Celsius.
// The second return is false when no temperature has been collected.
func (v VitalsRecord) TemperatureCelsius() (float64, bool) {
	if v.Temperature == nil {
		return 0, false
	}
	value := v.Temperature.Value
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v.Temperature.Unit), "°")) {
	case "f", "fahrenheit":
		return (value - 32) * 5 / 9, true
	default:
		return value, true
	}
}
