package models

import "time"

// MetaDecision 元分类器输出
type MetaDecision struct {
	PredictedClass DiseaseClass               `json:"predicted_class"`
	Confidence     float64                    `json:"confidence"`
	Distribution   [NumDiseaseClasses]float64 `json:"distribution"`
}

// DistributionMap 以 class -> probability 形式返回分布
func (d MetaDecision) DistributionMap() map[int]float64 {
	out := make(map[int]float64, NumDiseaseClasses)
	for i, p := range d.Distribution {
		out[i] = p
	}
	return out
}

// ClinicalFlag 临床模型阈值判定（模型自带 threshold 时才有）
type ClinicalFlag struct {
	System      System  `json:"system"`
	Probability float64 `json:"probability"`
	Threshold   float64 `json:"threshold"`
	Risk        bool    `json:"risk"`
}

// Assessment NCM 综合评估
type Assessment struct {
	RiskCategory  string         `json:"risk_category"` // Low, Moderate, High, Critical
	SystemicFlag  string         `json:"systemic_flag"`
	CardiacState  string         `json:"cardiac_state"`
	StressState   string         `json:"stress_state"`
	MuscleState   string         `json:"muscle_state"`
	ClinicalFlags []ClinicalFlag `json:"clinical_flags,omitempty"`
}

// Diagnostics 诊断过程中的可观测信息（被截断的输入等），不影响诊断结果
type Diagnostics struct {
	SignalFeatures SignalFeatures `json:"signal_features"`
	Clamped        []ClampEvent   `json:"clamped,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
	LatencyMs      int64          `json:"latency_ms"`
}

// FinalDiagnosis 最终诊断（构建后不可修改）
type FinalDiagnosis struct {
	ID              string                `json:"id"`
	PatientID       string                `json:"patient_id,omitempty"`
	FinalClass      DiseaseClass          `json:"final_class"`
	DiseaseName     string                `json:"disease_name"`
	MetaClass       DiseaseClass          `json:"meta_class"`
	Confidence      float64               `json:"confidence"`
	RuleOverridden  bool                  `json:"rule_overridden"`
	RuleID          string                `json:"rule_id,omitempty"`
	RuleLevel       int                   `json:"rule_level"`
	FallbackApplied bool                  `json:"fallback_applied"`
	ProxyScores     []float64             `json:"proxy_scores,omitempty"`
	Distribution    map[int]float64       `json:"class_distribution"`
	Probabilities   UpstreamProbabilities `json:"probabilities"`
	MetaFeatures    MetaFeatures          `json:"meta_features"`
	Vitals          PatientVitals         `json:"vitals"`
	Assessment      Assessment            `json:"assessment"`
	Diagnostics     Diagnostics           `json:"diagnostics"`
	ModelVersion    string                `json:"model_version,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}
