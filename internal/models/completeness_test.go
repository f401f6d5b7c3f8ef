package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasChiefComplaint(t *testing.T) {
	r := MedicalRecord{}
	assert.False(t, r.HasChiefComplaint())

	r.ChiefComplaint = "   "
	assert.False(t, r.HasChiefComplaint())

	r.ChiefComplaint = "sore throat"
	assert.True(t, r.HasChiefComplaint())
}

func TestHPISufficient(t *testing.T) {
	r := MedicalRecord{HPI: strings.Repeat("x", MinHPILength-1)}
	assert.False(t, r.HPISufficient())

	r.HPI = strings.Repeat("x", MinHPILength)
	assert.True(t, r.HPISufficient())

	r.HPI = "   " + strings.Repeat("x", MinHPILength-1) + "   "
	assert.False(t, r.HPISufficient())
}

func TestHistoryPresent(t *testing.T) {
	r := MedicalRecord{}
	assert.False(t, r.HistoryPresent())

	r.Medications = []string{"metformin"}
	assert.True(t, r.HistoryPresent())

	r = MedicalRecord{Allergies: []string{"latex"}}
	assert.True(t, r.HistoryPresent())

	r = MedicalRecord{PastMedicalHistory: []string{"hypertension"}}
	assert.True(t, r.HistoryPresent())
}

func TestMissingVitals(t *testing.T) {
	v := VitalsRecord{}
	assert.Equal(t, []string{"temperature", "weight", "blood pressure"}, v.MissingVitals())

	sys := 120
	v = VitalsRecord{
		Temperature:   &Measurement{Value: 36.6, Unit: "C"},
		Weight:        &Measurement{Value: 80, Unit: "kg"},
		BloodPressure: &BloodPressure{Systolic: &sys},
	}
	assert.Equal(t, []string{"blood pressure (partial reading)"}, v.MissingVitals())

	dia := 80
	v.BloodPressure.Diastolic = &dia
	assert.Empty(t, v.MissingVitals())
}

func TestTemperatureCelsius(t *testing.T) {
	v := VitalsRecord{}
	_, ok := v.TemperatureCelsius()
	assert.False(t, ok)

	v.Temperature = &Measurement{Value: 98.6, Unit: "F"}
	c, ok := v.TemperatureCelsius()
	assert.True(t, ok)
	assert.InDelta(t, 37.0, c, 0.01)

	v.Temperature = &Measurement{Value: 38.2, Unit: "°C"}
	c, ok = v.TemperatureCelsius()
	assert.True(t, ok)
	assert.InDelta(t, 38.2, c, 0.001)
}
