package rules

import (
	"testing"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/metafeature"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalVitals() models.PatientVitals {
	return models.PatientVitals{BP: 120, HeartRate: 72, Glucose: 95, SpO2: 98, Sleep: 7, Steps: 8000}
}

func allProbs(v float64) models.UpstreamProbabilities {
	return models.UpstreamProbabilities{Heart: v, Diabetes: v, Stroke: v, ECG: v, EEGNeuro: v, EEGEpilepsy: v, EMG: v}
}

func newInput(p models.UpstreamProbabilities, v models.PatientVitals, metaClass models.DiseaseClass, confidence float64) RuleInput {
	return RuleInput{
		Vitals:        v,
		Probabilities: p,
		MetaFeatures:  metafeature.Compute(p),
		Meta:          models.MetaDecision{PredictedClass: metaClass, Confidence: confidence},
	}
}

func TestEngine_RuleOrder(t *testing.T) {
	var ids []string
	for _, r := range NewEngine().Rules() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{
		"L1_STROKE_HYPOXIA", "L1_STROKE_SEVERE_BP", "L1_CHD",
		"L2_DIABETES", "L2_METABOLIC", "L2_HYPERTENSION",
		"L3_ARRHYTHMIA", "L3_EPILEPSY", "L3_NEURO",
		"L4_HEALTHY",
	}, ids)
}

func TestEngine_Rules(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name      string
		probs     models.UpstreamProbabilities
		vitals    models.PatientVitals
		metaClass models.DiseaseClass
		conf      float64
		wantClass models.DiseaseClass
		wantRule  string
		wantLevel int
	}{
		{
			name:      "stroke with hypoxia",
			probs:     models.UpstreamProbabilities{Heart: 0.5, Diabetes: 0.2, Stroke: 0.9, ECG: 0.3, EEGNeuro: 0.2, EMG: 0.2},
			vitals:    models.PatientVitals{BP: 155, HeartRate: 90, Glucose: 110, SpO2: 95, Sleep: 6, Steps: 3000},
			metaClass: models.Hypertension,
			conf:      0.9,
			wantClass: models.Stroke,
			wantRule:  "L1_STROKE_HYPOXIA",
			wantLevel: LevelLifeThreatening,
		},
		{
			name:      "level 1 beats level 3",
			probs:     models.UpstreamProbabilities{Heart: 0.5, Diabetes: 0.2, Stroke: 0.95, ECG: 0.95, EEGNeuro: 0.2, EMG: 0.2},
			vitals:    models.PatientVitals{BP: 180, HeartRate: 90, Glucose: 110, SpO2: 98, Sleep: 6, Steps: 3000},
			metaClass: models.Arrhythmia,
			conf:      0.9,
			wantClass: models.Stroke,
			wantRule:  "L1_STROKE_SEVERE_BP",
			wantLevel: LevelLifeThreatening,
		},
		{
			name:      "coronary heart disease beats epilepsy",
			probs:     models.UpstreamProbabilities{Heart: 0.9, Diabetes: 0.1, Stroke: 0.2, ECG: 0.8, EEGNeuro: 0.9, EEGEpilepsy: 0.9, EMG: 0.7},
			vitals:    normalVitals(),
			metaClass: models.Epilepsy,
			conf:      0.9,
			wantClass: models.CoronaryHeartDisease,
			wantRule:  "L1_CHD",
			wantLevel: LevelLifeThreatening,
		},
		{
			name:      "diabetes",
			probs:     models.UpstreamProbabilities{Heart: 0.1, Diabetes: 0.9, Stroke: 0.1, ECG: 0.1, EEGNeuro: 0.1, EMG: 0.1},
			vitals:    models.PatientVitals{BP: 140, HeartRate: 80, Glucose: 200, SpO2: 98, Sleep: 7, Steps: 4000},
			metaClass: models.MetabolicSyndrome,
			conf:      0.9,
			wantClass: models.Diabetes,
			wantRule:  "L2_DIABETES",
			wantLevel: LevelMetabolic,
		},
		{
			name:      "hypertension",
			probs:     models.UpstreamProbabilities{Heart: 0.1, Diabetes: 0.1, Stroke: 0.65, ECG: 0.1, EEGNeuro: 0.1, EMG: 0.1},
			vitals:    models.PatientVitals{BP: 180, HeartRate: 80, Glucose: 100, SpO2: 98, Sleep: 7, Steps: 4000},
			metaClass: models.Stroke,
			conf:      0.9,
			wantClass: models.Hypertension,
			wantRule:  "L2_HYPERTENSION",
			wantLevel: LevelMetabolic,
		},
		{
			name:      "neurological disorder",
			probs:     models.UpstreamProbabilities{Heart: 0.1, Diabetes: 0.1, Stroke: 0.7, ECG: 0.1, EEGNeuro: 0.9, EEGEpilepsy: 0.1, EMG: 0.9},
			vitals:    normalVitals(),
			metaClass: models.Stroke,
			conf:      0.9,
			wantClass: models.NeurologicalDisorder,
			wantRule:  "L3_NEURO",
			wantLevel: LevelSignal,
		},
		{
			name:      "all low is healthy",
			probs:     allProbs(0.1),
			vitals:    normalVitals(),
			metaClass: models.Hypertension,
			conf:      0.3,
			wantClass: models.NoSignificantDisease,
			wantRule:  "L4_HEALTHY",
			wantLevel: LevelHealthy,
		},
		{
			name:      "thresholds are strict",
			probs:     models.UpstreamProbabilities{Heart: 0.5, Diabetes: 0.2, Stroke: 0.85, ECG: 0.3, EEGNeuro: 0.2, EMG: 0.2},
			vitals:    models.PatientVitals{BP: 151, HeartRate: 80, Glucose: 100, SpO2: 96, Sleep: 7, Steps: 4000},
			metaClass: models.Stroke,
			conf:      0.8,
			wantClass: models.Stroke,
			wantRule:  RuleMetaClassifier,
			wantLevel: LevelMeta,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := engine.Evaluate(newInput(tt.probs, tt.vitals, tt.metaClass, tt.conf))
			assert.Equal(t, tt.wantClass, out.FinalClass)
			assert.Equal(t, tt.wantRule, out.RuleID)
			assert.Equal(t, tt.wantLevel, out.Level)
			assert.Equal(t, tt.metaClass, out.MetaClass)
			assert.Equal(t, out.FinalClass != tt.metaClass, out.Overridden)
			assert.False(t, out.FallbackApplied)
		})
	}
}

func fallbackProbs() models.UpstreamProbabilities {
	return models.UpstreamProbabilities{Heart: 0.5, Diabetes: 0.45, Stroke: 0.3, ECG: 0.55, EEGNeuro: 0.4, EEGEpilepsy: 0.1, EMG: 0.3}
}

func fallbackVitals() models.PatientVitals {
	return models.PatientVitals{BP: 130, HeartRate: 78, Glucose: 110, SpO2: 98, Sleep: 7, Steps: 6000}
}

func TestEngine_ConfidenceFallback(t *testing.T) {
	out := NewEngine().Evaluate(newInput(fallbackProbs(), fallbackVitals(), models.Hypertension, 0.4))

	assert.True(t, out.FallbackApplied)
	assert.False(t, out.RuleFired)
	assert.Equal(t, models.NoSignificantDisease, out.FinalClass)
	assert.Equal(t, RuleConfidenceFallback, out.RuleID)
	assert.True(t, out.Overridden)

	require.Len(t, out.ProxyScores, models.NumDiseaseClasses)
	assert.InDelta(t, 0.525, out.ProxyScores[0], 1e-12)
	assert.InDelta(t, 0.44, out.ProxyScores[3], 1e-12)
	assert.InDelta(t, 0.56, out.ProxyScores[8], 1e-12)
}

func TestEngine_ConfidentMetaIsKept(t *testing.T) {
	engine := NewEngine()

	out := engine.Evaluate(newInput(fallbackProbs(), fallbackVitals(), models.Hypertension, 0.8))
	assert.Equal(t, models.Hypertension, out.FinalClass)
	assert.Equal(t, RuleMetaClassifier, out.RuleID)
	assert.False(t, out.Overridden)
	assert.Nil(t, out.ProxyScores)

	// 恰好等于阈值不触发兜底
	out = engine.Evaluate(newInput(fallbackProbs(), fallbackVitals(), models.Hypertension, ConfidenceThreshold))
	assert.False(t, out.FallbackApplied)
	assert.Equal(t, models.Hypertension, out.FinalClass)
}

func TestEngine_RuleAgreeingWithMetaIsNotOverride(t *testing.T) {
	out := NewEngine().Evaluate(newInput(allProbs(0.1), normalVitals(), models.NoSignificantDisease, 0.2))

	assert.True(t, out.RuleFired)
	assert.Equal(t, "L4_HEALTHY", out.RuleID)
	assert.False(t, out.Overridden)
	assert.False(t, out.FallbackApplied, "fallback only runs when no rule fired")
}

func TestEngine_FallbackAgreeingWithMeta(t *testing.T) {
	out := NewEngine().Evaluate(newInput(fallbackProbs(), fallbackVitals(), models.NoSignificantDisease, 0.3))

	assert.True(t, out.FallbackApplied)
	assert.Equal(t, models.NoSignificantDisease, out.FinalClass)
	assert.False(t, out.Overridden)
}

func TestArgmaxClass_Ties(t *testing.T) {
	var scores [models.NumDiseaseClasses]float64
	assert.Equal(t, models.CoronaryHeartDisease, argmaxClass(scores))

	scores[2], scores[5] = 0.7, 0.7
	assert.Equal(t, models.Diabetes, argmaxClass(scores))
}

func TestEngine_Deterministic(t *testing.T) {
	engine := NewEngine()
	in := newInput(fallbackProbs(), fallbackVitals(), models.Hypertension, 0.4)
	assert.Equal(t, engine.Evaluate(in), engine.Evaluate(in))
}
