package predictor

import (
	"context"
	"errors"
	"testing"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingModel 记录收到的特征向量
type recordingModel struct {
	width int
	prob  float64
	err   error
	seen  []float64
}

func (m *recordingModel) NumFeatures() int { return m.width }

func (m *recordingModel) PredictProba(_ context.Context, x []float64) (float64, error) {
	m.seen = append([]float64(nil), x...)
	return m.prob, m.err
}

type fixedDistribution struct {
	width   int
	classes int
	dist    []float64
}

func (m *fixedDistribution) NumFeatures() int { return m.width }
func (m *fixedDistribution) NumClasses() int  { return m.classes }
func (m *fixedDistribution) PredictDistribution(_ context.Context, _ []float64) ([]float64, error) {
	return m.dist, nil
}

func halfScaler(width int) *StandardScaler {
	s := &StandardScaler{Mean: make([]float64, width), Scale: make([]float64, width)}
	for i := range s.Scale {
		s.Scale[i] = 2
	}
	return s
}

func sampleInput() Input {
	v := models.PatientVitals{BP: 130, HeartRate: 80, Glucose: 110, SpO2: 97, Sleep: 6, Steps: 5000}
	return Input{
		Vitals:  v,
		Signals: models.SignalFeatures{HRVSDNN: 60, StressRatio: 1.625, EMGRMS: 0.5},
	}
}

func TestClinicalAdapter_TransformThenScaleThenPredict(t *testing.T) {
	model := &recordingModel{width: 10, prob: 0.42}
	adapter, err := NewClinicalAdapter(ClinicalModelBundle{
		System: models.SystemHeart,
		Model:  model,
		Scaler: halfScaler(10),
	})
	require.NoError(t, err)

	p, err := adapter.Predict(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, 0.42, p)

	engineered, err := HeartTransform(sampleInput().Vitals, sampleInput().Signals).Select("heart", HeartFeatureNames)
	require.NoError(t, err)
	require.Len(t, model.seen, 10)
	for i := range engineered {
		assert.InDelta(t, engineered[i]/2, model.seen[i], 1e-12)
	}
}

func TestClinicalAdapter_OptionalScaler(t *testing.T) {
	model := &recordingModel{width: 10, prob: 0.1}
	adapter, err := NewClinicalAdapter(ClinicalModelBundle{System: models.SystemStroke, Model: model})
	require.NoError(t, err)

	_, err = adapter.Predict(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, 130.0, model.seen[0])
	assert.InDelta(t, -10.9, model.seen[9], 1e-9)
}

func TestClinicalAdapter_Flag(t *testing.T) {
	threshold := 0.4
	adapter, err := NewClinicalAdapter(ClinicalModelBundle{
		System:    models.SystemDiabetes,
		Model:     &recordingModel{width: 10},
		Threshold: &threshold,
	})
	require.NoError(t, err)

	flag, ok := adapter.Flag(0.55)
	require.True(t, ok)
	assert.True(t, flag.Risk)
	assert.Equal(t, models.SystemDiabetes, flag.System)

	flag, _ = adapter.Flag(0.4)
	assert.False(t, flag.Risk)

	noThreshold, err := NewClinicalAdapter(ClinicalModelBundle{System: models.SystemHeart, Model: &recordingModel{width: 10}})
	require.NoError(t, err)
	_, ok = noThreshold.Flag(0.9)
	assert.False(t, ok)
}

func TestClinicalAdapter_ModelFailureIsUnavailable(t *testing.T) {
	adapter, err := NewClinicalAdapter(ClinicalModelBundle{
		System: models.SystemHeart,
		Model:  &recordingModel{width: 10, err: errors.New("boom")},
	})
	require.NoError(t, err)

	_, err = adapter.Predict(context.Background(), sampleInput())
	var unavailable *models.PredictorUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, models.SystemHeart, unavailable.System)
}

func TestClinicalAdapter_InvalidProbability(t *testing.T) {
	adapter, err := NewClinicalAdapter(ClinicalModelBundle{
		System: models.SystemHeart,
		Model:  &recordingModel{width: 10, prob: 1.5},
	})
	require.NoError(t, err)

	_, err = adapter.Predict(context.Background(), sampleInput())
	var unavailable *models.PredictorUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestBundleValidate_ShapeContracts(t *testing.T) {
	_, err := NewClinicalAdapter(ClinicalModelBundle{System: models.SystemHeart, Model: &recordingModel{width: 9}})
	var shape *models.ShapeMismatchError
	assert.ErrorAs(t, err, &shape)

	_, err = NewClinicalAdapter(ClinicalModelBundle{
		System:       models.SystemHeart,
		Model:        &recordingModel{width: 10},
		FeatureNames: append([]string{"HeartRate", "BP"}, HeartFeatureNames[2:]...),
	})
	assert.ErrorAs(t, err, &shape)

	_, err = NewClinicalAdapter(ClinicalModelBundle{
		System:       models.SystemHeart,
		Model:        &recordingModel{width: 10},
		FeatureNames: append([]string{"Cholesterol"}, HeartFeatureNames[1:]...),
	})
	var missing *models.MissingFeatureError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Cholesterol", missing.Feature)

	_, err = NewSignalAdapter(SignalModelBundle{System: models.SystemECG, Model: &recordingModel{width: 2}})
	assert.Error(t, err, "signal models require a scaler")

	_, err = NewSignalAdapter(SignalModelBundle{System: models.SystemECG, Model: &recordingModel{width: 2}, Scaler: halfScaler(3)})
	assert.ErrorAs(t, err, &shape)
}

func TestSignalAdapter_ECGAndEMG(t *testing.T) {
	ecgModel := &recordingModel{width: 2, prob: 0.3}
	ecg, err := NewSignalAdapter(SignalModelBundle{System: models.SystemECG, Model: ecgModel, Scaler: halfScaler(2)})
	require.NoError(t, err)

	_, err = ecg.Predict(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 30}, ecgModel.seen)

	emgModel := &recordingModel{width: 2, prob: 0.3}
	emg, err := NewSignalAdapter(SignalModelBundle{System: models.SystemEMG, Model: emgModel, Scaler: halfScaler(2)})
	require.NoError(t, err)

	_, err = emg.Predict(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 2500}, emgModel.seen)
	assert.Equal(t, models.SystemEMG, emg.System())
}

func TestNeuroAdapter_Mapping(t *testing.T) {
	adapter, err := NewNeuroAdapter(NeuroModelBundle{
		Model:  &fixedDistribution{width: 2, classes: 3, dist: []float64{0.7, 0.2, 0.1}},
		Scaler: halfScaler(2),
	})
	require.NoError(t, err)

	out, err := adapter.Predict(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.InDelta(t, 0.3, out.Neuro, 1e-12)
	assert.InDelta(t, 0.1, out.Epilepsy, 1e-12)
	assert.Equal(t, [3]float64{0.7, 0.2, 0.1}, out.Distribution)
}

func TestNeuroAdapter_RejectsTwoClassModel(t *testing.T) {
	_, err := NewNeuroAdapter(NeuroModelBundle{
		Model:  &fixedDistribution{width: 2, classes: 2},
		Scaler: halfScaler(2),
	})
	var shape *models.ShapeMismatchError
	assert.ErrorAs(t, err, &shape)
}

func TestLocalModels(t *testing.T) {
	lr := &LogisticModel{Weights: []float64{0, 0}, Bias: 0}
	p, err := lr.PredictProba(context.Background(), []float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	_, err = lr.PredictProba(context.Background(), []float64{1})
	var shape *models.ShapeMismatchError
	assert.ErrorAs(t, err, &shape)

	sm := &SoftmaxModel{Weights: [][]float64{{0, 0}, {0, 0}, {0, 0}}}
	dist, err := sm.PredictDistribution(context.Background(), []float64{1, 2})
	require.NoError(t, err)
	require.Len(t, dist, 3)
	for _, d := range dist {
		assert.InDelta(t, 1.0/3, d, 1e-12)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lr.PredictProba(ctx, []float64{3, 4})
	assert.ErrorIs(t, err, context.Canceled)
}
