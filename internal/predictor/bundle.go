package predictor

import (
	"fmt"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
)

// EEGNumClasses EEG 模型输出 {normal, mild, epilepsy}
const EEGNumClasses = 3

// ClinicalModelBundle 临床模型（heart/diabetes/stroke）：标准化器与阈值均可选
type ClinicalModelBundle struct {
	System       models.System
	Model        BinaryModel
	Scaler       Scaler   // 可为 nil
	Threshold    *float64 // 可为 nil
	FeatureNames []string
}

// SignalModelBundle 信号模型（ECG/EMG）：标准化器必需
type SignalModelBundle struct {
	System       models.System
	Model        BinaryModel
	Scaler       Scaler
	FeatureNames []string
}

// NeuroModelBundle EEG 三分类模型
type NeuroModelBundle struct {
	Model        MulticlassModel
	Scaler       Scaler
	FeatureNames []string
}

// Validate 加载时检查形状契约
func (b *ClinicalModelBundle) Validate() error {
	switch b.System {
	case models.SystemHeart, models.SystemDiabetes, models.SystemStroke:
	default:
		return fmt.Errorf("system %s is not a clinical system", b.System)
	}
	if b.Model == nil {
		return fmt.Errorf("%s: model is required", b.System)
	}
	names, err := resolveFeatureNames(b.System, b.FeatureNames)
	if err != nil {
		return err
	}
	b.FeatureNames = names
	if b.Threshold != nil && (*b.Threshold < 0 || *b.Threshold > 1) {
		return fmt.Errorf("%s: threshold %v outside [0,1]", b.System, *b.Threshold)
	}
	return checkWidths(string(b.System), len(names), b.Scaler, b.Model.NumFeatures())
}

// Validate 加载时检查形状契约
func (b *SignalModelBundle) Validate() error {
	switch b.System {
	case models.SystemECG, models.SystemEMG:
	default:
		return fmt.Errorf("system %s is not a binary signal system", b.System)
	}
	if b.Model == nil {
		return fmt.Errorf("%s: model is required", b.System)
	}
	if b.Scaler == nil {
		return fmt.Errorf("%s: scaler is required for signal models", b.System)
	}
	names, err := resolveFeatureNames(b.System, b.FeatureNames)
	if err != nil {
		return err
	}
	b.FeatureNames = names
	return checkWidths(string(b.System), len(names), b.Scaler, b.Model.NumFeatures())
}

// Validate 加载时检查形状契约
func (b *NeuroModelBundle) Validate() error {
	if b.Model == nil {
		return fmt.Errorf("eeg: model is required")
	}
	if b.Scaler == nil {
		return fmt.Errorf("eeg: scaler is required for signal models")
	}
	if b.Model.NumClasses() != EEGNumClasses {
		return &models.ShapeMismatchError{Component: "eeg classes", Expected: EEGNumClasses, Actual: b.Model.NumClasses()}
	}
	names, err := resolveFeatureNames(models.SystemEEG, b.FeatureNames)
	if err != nil {
		return err
	}
	b.FeatureNames = names
	return checkWidths(string(models.SystemEEG), len(names), b.Scaler, b.Model.NumFeatures())
}

// resolveFeatureNames 未声明列名时使用变换的默认列顺序
// 声明了列名时用一次空输入走一遍 Select，提前暴露缺列或顺序错误
func resolveFeatureNames(system models.System, declared []string) ([]string, error) {
	transform, defaults, err := TransformFor(system)
	if err != nil {
		return nil, err
	}
	if len(declared) == 0 {
		return defaults, nil
	}
	row := transform(models.PatientVitals{}, models.SignalFeatures{})
	if _, err := row.Select(string(system), declared); err != nil {
		return nil, err
	}
	return declared, nil
}

func checkWidths(component string, width int, scaler Scaler, modelWidth int) error {
	if scaler != nil && scaler.NumFeatures() != width {
		return &models.ShapeMismatchError{Component: component + " scaler", Expected: width, Actual: scaler.NumFeatures()}
	}
	if modelWidth != width {
		return &models.ShapeMismatchError{Component: component + " model", Expected: width, Actual: modelWidth}
	}
	return nil
}
