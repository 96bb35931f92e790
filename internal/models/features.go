package models

// System 上游预测器所属系统
type System string

const (
	SystemHeart    System = "heart"
	SystemDiabetes System = "diabetes"
	SystemStroke   System = "stroke"
	SystemECG      System = "ecg"
	SystemEEG      System = "eeg"
	SystemEMG      System = "emg"
)

// AllSystems 六个上游系统（固定顺序）
var AllSystems = []System{
	SystemHeart,
	SystemDiabetes,
	SystemStroke,
	SystemECG,
	SystemEEG,
	SystemEMG,
}

// SignalFeatures 由生命体征派生的生理信号特征（每次请求重新计算，不落库）
type SignalFeatures struct {
	HRVSDNN     float64 `json:"hrv_sdnn"`
	StressRatio float64 `json:"stress_ratio"`
	EMGRMS      float64 `json:"emg_rms"`
}

// ClampEvent 记录一次被截断的派生特征
type ClampEvent struct {
	Feature string  `json:"feature"`
	Raw     float64 `json:"raw"`
	Clamped float64 `json:"clamped"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// EEGOutput EEG 三分类输出 {normal, mild, epilepsy}
type EEGOutput struct {
	Distribution [3]float64 `json:"distribution"`
	Neuro        float64    `json:"neuro"`    // 1 - p(normal)
	Epilepsy     float64    `json:"epilepsy"` // p(epilepsy)
}

// UpstreamProbabilities 六个上游预测器的输出（请求内只读）
type UpstreamProbabilities struct {
	Heart       float64 `json:"heart_prob"`
	Diabetes    float64 `json:"diabetes_prob"`
	Stroke      float64 `json:"stroke_prob"`
	ECG         float64 `json:"ecg_prob"`
	EEGNeuro    float64 `json:"eeg_neuro_prob"`
	EEGEpilepsy float64 `json:"eeg_epilepsy_prob"`
	EMG         float64 `json:"emg_prob"`
}

// MetaFeatures 由上游概率线性组合得到的派生特征
type MetaFeatures struct {
	StaticRisk        float64 `json:"static_risk"`
	NCMIndex          float64 `json:"ncm_index"`
	CardioCombined    float64 `json:"cardio_combined"`
	NeuroCombined     float64 `json:"neuro_combined"`
	MetabolicCombined float64 `json:"metabolic_combined"`
	FatigueIndex      float64 `json:"fatigue_index"`
}

// MetaFeatureDim 元分类器输入维度
const MetaFeatureDim = 12

// MetaFeatureVector 元分类器输入（列顺序即训练时的列顺序）
type MetaFeatureVector [MetaFeatureDim]float64

// MetaFeatureNames 元特征列顺序，任何调整都会让已训练的元分类器失效
var MetaFeatureNames = [MetaFeatureDim]string{
	"heart",
	"diabetes",
	"stroke",
	"ecg",
	"eeg_neuro",
	"emg",
	"static_risk",
	"ncm_index",
	"cardio_combined",
	"neuro_combined",
	"metabolic_combined",
	"fatigue_index",
}

// Slice 返回向量副本
func (v MetaFeatureVector) Slice() []float64 {
	out := make([]float64, MetaFeatureDim)
	copy(out, v[:])
	return out
}
