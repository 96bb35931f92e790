// Package signal 提供生理信号特征合成
//
// 从五项原始生命体征派生 ECG/EEG/EMG 模型所需的信号特征：
//   - hrv_sdnn     = clamp(100 - HeartRate*0.5, 5, 80)
//   - stress_ratio = clamp(BP / max(HeartRate, 1), 0.5, 5.0)
//   - emg_rms      = clamp(Steps / 10000, 0.01, 1.5)
//
// 推理时必须与信号模型训练时使用同一套公式。
package signal

import (
	"fmt"
	"math"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
)

// 截断边界
const (
	HRVMin    = 5.0
	HRVMax    = 80.0
	StressMin = 0.5
	StressMax = 5.0
	EMGMin    = 0.01
	EMGMax    = 1.5
)

// Synthesize 由生命体征派生信号特征，返回被截断的特征列表
// 纯函数：相同输入永远得到相同输出
func Synthesize(v models.PatientVitals) (models.SignalFeatures, []models.ClampEvent) {
	var events []models.ClampEvent

	hrv := clamp("hrv_sdnn", 100-v.HeartRate*0.5, HRVMin, HRVMax, &events)
	stress := clamp("stress_ratio", v.BP/math.Max(v.HeartRate, 1), StressMin, StressMax, &events)
	emg := clamp("emg_rms", v.Steps/10000, EMGMin, EMGMax, &events)

	return models.SignalFeatures{
		HRVSDNN:     hrv,
		StressRatio: stress,
		EMGRMS:      emg,
	}, events
}

func clamp(name string, raw, lo, hi float64, events *[]models.ClampEvent) float64 {
	val := raw
	if val < lo {
		val = lo
	} else if val > hi {
		val = hi
	}
	if val != raw {
		*events = append(*events, models.ClampEvent{
			Feature: name,
			Raw:     raw,
			Clamped: val,
			Min:     lo,
			Max:     hi,
		})
	}
	return val
}

// PlausibilityWarnings 列出超出生理合理范围的生命体征
// 只作为诊断信息上报，不拒绝请求（传感器噪声可能产生极端值）
func PlausibilityWarnings(v models.PatientVitals) []string {
	var warnings []string
	check := func(name string, val, lo, hi float64) {
		if val < lo || val > hi {
			warnings = append(warnings, fmt.Sprintf("%s=%g outside plausible range [%g, %g]", name, val, lo, hi))
		}
	}
	check("BP", v.BP, 40, 260)
	check("HeartRate", v.HeartRate, 20, 250)
	check("Glucose", v.Glucose, 20, 600)
	check("SpO2", v.SpO2, 50, 100)
	check("Sleep", v.Sleep, 0, 24)
	check("Steps", v.Steps, 0, 100000)
	return warnings
}
