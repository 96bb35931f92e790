package models

import "math"

// PatientVitals 单次请求的原始生命体征（请求内不可变）
type PatientVitals struct {
	BP        float64 `json:"BP"`        // mmHg
	HeartRate float64 `json:"HeartRate"` // bpm
	Glucose   float64 `json:"Glucose"`   // mg/dL
	SpO2      float64 `json:"SpO2"`      // %
	Sleep     float64 `json:"Sleep"`     // hours
	Steps     float64 `json:"Steps"`     // count
}

// VitalsInput 请求边界上的生命体征（字段可缺失，由 ToVitals 统一校验）
type VitalsInput struct {
	BP        *float64 `json:"BP"`
	HeartRate *float64 `json:"HeartRate"`
	Glucose   *float64 `json:"Glucose"`
	SpO2      *float64 `json:"SpO2"`
	Sleep     *float64 `json:"Sleep"`
	Steps     *float64 `json:"Steps"`
}

// ToVitals 校验必填字段并转换为 PatientVitals
// 缺失字段返回 MissingFeatureError，绝不填充默认值
func (in VitalsInput) ToVitals() (PatientVitals, error) {
	fields := []struct {
		name string
		val  *float64
	}{
		{"BP", in.BP},
		{"HeartRate", in.HeartRate},
		{"Glucose", in.Glucose},
		{"SpO2", in.SpO2},
		{"Sleep", in.Sleep},
		{"Steps", in.Steps},
	}
	for _, f := range fields {
		if f.val == nil {
			return PatientVitals{}, &MissingFeatureError{Feature: f.name, Context: "vitals"}
		}
		if math.IsNaN(*f.val) || math.IsInf(*f.val, 0) {
			return PatientVitals{}, &InvalidFeatureError{Feature: f.name, Value: *f.val}
		}
	}
	return PatientVitals{
		BP:        *in.BP,
		HeartRate: *in.HeartRate,
		Glucose:   *in.Glucose,
		SpO2:      *in.SpO2,
		Sleep:     *in.Sleep,
		Steps:     *in.Steps,
	}, nil
}

// Input 将 PatientVitals 转换回边界类型（CLI/测试使用）
func (v PatientVitals) Input() VitalsInput {
	return VitalsInput{
		BP:        &v.BP,
		HeartRate: &v.HeartRate,
		Glucose:   &v.Glucose,
		SpO2:      &v.SpO2,
		Sleep:     &v.Sleep,
		Steps:     &v.Steps,
	}
}
