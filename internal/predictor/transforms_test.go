package predictor

import (
	"testing"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicalTransforms(t *testing.T) {
	v := models.PatientVitals{BP: 130, HeartRate: 80, Glucose: 110, SpO2: 97, Sleep: 6, Steps: 5000}

	tests := []struct {
		name      string
		transform Transform
		names     []string
		expected  map[string]float64
	}{
		{
			name:      "heart",
			transform: HeartTransform,
			names:     HeartFeatureNames,
			expected: map[string]float64{
				"PulsePressure":     50,
				"ActivityScore":     5,
				"SleepDeficit":      2,
				"CardioStressIndex": 5.06,
			},
		},
		{
			name:      "diabetes",
			transform: DiabetesTransform,
			names:     DiabetesFeatureNames,
			expected: map[string]float64{
				"GlucoseStress":  1.1,
				"ActivityScore":  5,
				"SleepDeficit":   2,
				"MetabolicIndex": 7.92,
			},
		},
		{
			name:      "stroke",
			transform: StrokeTransform,
			names:     StrokeFeatureNames,
			expected: map[string]float64{
				"PulsePressure":   50,
				"ActivityScore":   5,
				"OxygenDeficit":   1,
				"StrokeRiskIndex": -10.9,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.transform(v, models.SignalFeatures{})
			assert.Equal(t, tt.names, row.Names())
			for name, want := range tt.expected {
				got, ok := row.Get(name)
				require.True(t, ok, name)
				assert.InDelta(t, want, got, 1e-9, name)
			}
			x, err := row.Select(tt.name, tt.names)
			require.NoError(t, err)
			assert.Len(t, x, 10)
			assert.Equal(t, 130.0, x[0])
		})
	}
}

func TestFeatureRowSelect_Errors(t *testing.T) {
	row := ECGTransform(models.PatientVitals{HeartRate: 70}, models.SignalFeatures{HRVSDNN: 65})

	_, err := row.Select("ecg", []string{"heart_rate", "qt_interval"})
	var missing *models.MissingFeatureError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "qt_interval", missing.Feature)
	assert.Equal(t, "ecg", missing.Context)

	_, err = row.Select("ecg", []string{"hrv_sdnn", "heart_rate"})
	var shape *models.ShapeMismatchError
	require.ErrorAs(t, err, &shape)
	assert.Contains(t, shape.Detail, "column 0")

	_, err = row.Select("ecg", []string{"heart_rate"})
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 2, shape.Expected)
	assert.Equal(t, 1, shape.Actual)

	x, err := row.Select("ecg", ECGFeatureNames)
	require.NoError(t, err)
	assert.Equal(t, []float64{70, 65}, x)
}

func TestTransformFor(t *testing.T) {
	for _, system := range models.AllSystems {
		transform, names, err := TransformFor(system)
		require.NoError(t, err, system)
		assert.NotNil(t, transform)
		assert.NotEmpty(t, names)
	}
	_, _, err := TransformFor("liver")
	assert.Error(t, err)
}
