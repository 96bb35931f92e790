package signal

import (
	"testing"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_NormalVitals(t *testing.T) {
	v := models.PatientVitals{BP: 120, HeartRate: 72, Glucose: 95, SpO2: 98, Sleep: 7, Steps: 8000}

	sf, events := Synthesize(v)

	assert.InDelta(t, 64.0, sf.HRVSDNN, 1e-9)
	assert.InDelta(t, 120.0/72.0, sf.StressRatio, 1e-9)
	assert.InDelta(t, 0.8, sf.EMGRMS, 1e-9)
	assert.Empty(t, events)
}

func TestSynthesize_ClampsAndReports(t *testing.T) {
	// HeartRate=0 不能除零；Steps 极大
	v := models.PatientVitals{BP: 190, HeartRate: 0, Glucose: 100, SpO2: 97, Sleep: 5, Steps: 40000}

	sf, events := Synthesize(v)

	assert.Equal(t, HRVMax, sf.HRVSDNN)
	assert.Equal(t, StressMax, sf.StressRatio)
	assert.Equal(t, EMGMax, sf.EMGRMS)
	require.Len(t, events, 3)
	assert.Equal(t, "hrv_sdnn", events[0].Feature)
	assert.Equal(t, 100.0, events[0].Raw)
	assert.Equal(t, "stress_ratio", events[1].Feature)
	assert.Equal(t, 190.0, events[1].Raw)
	assert.Equal(t, "emg_rms", events[2].Feature)
	assert.Equal(t, 4.0, events[2].Raw)
}

func TestSynthesize_LowerBounds(t *testing.T) {
	v := models.PatientVitals{BP: 40, HeartRate: 220, Glucose: 90, SpO2: 99, Sleep: 8, Steps: 0}

	sf, events := Synthesize(v)

	assert.Equal(t, HRVMin, sf.HRVSDNN)
	assert.Equal(t, StressMin, sf.StressRatio)
	assert.Equal(t, EMGMin, sf.EMGRMS)
	assert.Len(t, events, 3)
}

func TestSynthesize_StaysWithinBounds(t *testing.T) {
	for bp := 0.0; bp <= 260; bp += 20 {
		for hr := 0.0; hr <= 240; hr += 15 {
			for steps := 0.0; steps <= 30000; steps += 2500 {
				sf, _ := Synthesize(models.PatientVitals{BP: bp, HeartRate: hr, Steps: steps, SpO2: 97, Glucose: 100, Sleep: 7})
				assert.GreaterOrEqual(t, sf.HRVSDNN, HRVMin)
				assert.LessOrEqual(t, sf.HRVSDNN, HRVMax)
				assert.GreaterOrEqual(t, sf.StressRatio, StressMin)
				assert.LessOrEqual(t, sf.StressRatio, StressMax)
				assert.GreaterOrEqual(t, sf.EMGRMS, EMGMin)
				assert.LessOrEqual(t, sf.EMGRMS, EMGMax)
			}
		}
	}
}

func TestSynthesize_Idempotent(t *testing.T) {
	v := models.PatientVitals{BP: 145, HeartRate: 85, Glucose: 260, SpO2: 96, Sleep: 6, Steps: 3000}

	a, ea := Synthesize(v)
	b, eb := Synthesize(v)

	assert.Equal(t, a, b)
	assert.Equal(t, ea, eb)
}

func TestPlausibilityWarnings(t *testing.T) {
	assert.Empty(t, PlausibilityWarnings(models.PatientVitals{BP: 120, HeartRate: 70, Glucose: 90, SpO2: 98, Sleep: 7, Steps: 5000}))

	warnings := PlausibilityWarnings(models.PatientVitals{BP: 120, HeartRate: 0, Glucose: 90, SpO2: 101, Sleep: 7, Steps: 5000})
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "HeartRate")
	assert.Contains(t, warnings[1], "SpO2")
}
