package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiseaseClass(t *testing.T) {
	for _, c := range AllDiseaseClasses() {
		got, err := ParseDiseaseClass(int(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	assert.Equal(t, "No Significant Disease", NoSignificantDisease.Name())
	assert.Equal(t, "General Neurological Disorder", NeurologicalDisorder.String())

	for _, label := range []int{-1, 9, 42} {
		_, err := ParseDiseaseClass(label)
		var ice *InvalidClassError
		require.True(t, errors.As(err, &ice), "label %d", label)
		assert.Equal(t, label, ice.Label)
	}
	assert.Equal(t, "Unknown(9)", DiseaseClass(9).Name())
}

func TestToVitals(t *testing.T) {
	var in VitalsInput
	require.NoError(t, json.Unmarshal([]byte(`{"BP":120,"HeartRate":72,"Glucose":95,"SpO2":98,"Sleep":7,"Steps":0}`), &in))

	v, err := in.ToVitals()
	require.NoError(t, err)
	assert.Equal(t, PatientVitals{BP: 120, HeartRate: 72, Glucose: 95, SpO2: 98, Sleep: 7, Steps: 0}, v,
		"an explicit zero is a value, not a missing field")

	round, err := v.Input().ToVitals()
	require.NoError(t, err)
	assert.Equal(t, v, round)
}

func TestToVitals_Missing(t *testing.T) {
	var in VitalsInput
	require.NoError(t, json.Unmarshal([]byte(`{"BP":120,"HeartRate":72,"Glucose":95,"SpO2":98,"Steps":100}`), &in))

	_, err := in.ToVitals()
	var mfe *MissingFeatureError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "Sleep", mfe.Feature)
	assert.Equal(t, "vitals", mfe.Context)
}

func TestToVitals_NotFinite(t *testing.T) {
	v := PatientVitals{BP: 120, HeartRate: 72, Glucose: 95, SpO2: 98, Sleep: 7, Steps: 10}
	in := v.Input()
	nan := math.NaN()
	in.Glucose = &nan

	_, err := in.ToVitals()
	var ife *InvalidFeatureError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, "Glucose", ife.Feature)
}

func TestComponentError_Unwrap(t *testing.T) {
	inner := &PredictorUnavailableError{System: SystemEEG, Err: errors.New("timeout")}
	err := &ComponentError{Component: "predictors", Err: inner}

	var pue *PredictorUnavailableError
	require.True(t, errors.As(err, &pue))
	assert.Equal(t, SystemEEG, pue.System)
	assert.Contains(t, err.Error(), "predictors: predictor eeg unavailable")
}

func TestMetaDecision_DistributionMap(t *testing.T) {
	d := MetaDecision{PredictedClass: Stroke, Confidence: 0.5}
	d.Distribution[Stroke] = 0.5
	d.Distribution[NoSignificantDisease] = 0.5

	m := d.DistributionMap()
	assert.Len(t, m, NumDiseaseClasses)
	assert.Equal(t, 0.5, m[1])
	assert.Equal(t, 0.0, m[0])
}
