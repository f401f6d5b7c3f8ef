package triage

// Policy holds every clinical threshold and keyword vocabulary the triage
// engine consults. Keeping these as injected configuration rather than
// literals lets clinical review change them without a code change.
type Policy struct {
	// Emergency cutoffs. Temperatures are in Celsius after unit
	// normalization.
	TempHighC        float64  `yaml:"temp_high_c"`
	TempLowC         float64  `yaml:"temp_low_c"`
	SystolicCrisis   int      `yaml:"systolic_crisis"`
	DiastolicCrisis  int      `yaml:"diastolic_crisis"`
	CriticalSymptoms []string `yaml:"critical_symptoms"`

	// Elevated-but-non-critical cutoffs feeding the complexity assessment.
	TempElevatedC     float64 `yaml:"temp_elevated_c"`
	SystolicElevated  int     `yaml:"systolic_elevated"`
	DiastolicElevated int     `yaml:"diastolic_elevated"`

	// Complexity vocabularies.
	SymptomKeywords  []string `yaml:"symptom_keywords"`
	ChronicKeywords  []string `yaml:"chronic_keywords"`
	DurationKeywords []string `yaml:"duration_keywords"`

	// Complexity scoring. Each missing vitals group contributes
	// MissingVitalWeight, each complexity signal SignalWeight; the decision
	// becomes agent-assisted once the total reaches ComplexityThreshold.
	MissingVitalWeight  float64 `yaml:"missing_vital_weight"`
	SignalWeight        float64 `yaml:"signal_weight"`
	ComplexityThreshold float64 `yaml:"complexity_threshold"`
}

// DefaultPolicy returns the shipped clinical parameters. The emergency
// cutoffs follow hypertensive-crisis and critical-fever conventions; see the
// policy file for the deployable overlay.
func DefaultPolicy() Policy {
	return Policy{
		TempHighC:       39.5,
		TempLowC:        35.0,
		SystolicCrisis:  180,
		DiastolicCrisis: 120,
		CriticalSymptoms: []string{
			"severe chest pain",
			"chest pain",
			"difficulty breathing",
			"can't breathe",
			"cannot breathe",
			"shortness of breath",
			"severe bleeding",
			"coughing blood",
			"unconscious",
			"unresponsive",
			"seizure",
			"stroke",
			"slurred speech",
			"face drooping",
			"severe allergic reaction",
			"anaphylaxis",
			"suicidal",
		},
		TempElevatedC:     38.0,
		SystolicElevated:  140,
		DiastolicElevated: 90,
		SymptomKeywords: []string{
			"headache", "nausea", "vomiting", "dizz", "fatigue",
			"fever", "cough", "rash", "pain", "swelling",
			"diarrhea", "numbness", "palpitations",
		},
		ChronicKeywords: []string{
			"chronic", "diabetes", "diabetic", "hypertension", "asthma",
			"copd", "heart disease", "kidney disease", "cancer",
			"autoimmune", "arthritis",
		},
		DurationKeywords: []string{
			"weeks", "for a week", "month", "months", "for years",
			"several days", "ongoing", "keeps coming back", "recurring",
		},
		MissingVitalWeight:  0.5,
		SignalWeight:        2.0,
		ComplexityThreshold: 2.0,
	}
}
