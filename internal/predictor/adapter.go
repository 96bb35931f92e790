package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
)

// Input 一次请求中所有适配器共享的只读输入
type Input struct {
	Vitals  models.PatientVitals
	Signals models.SignalFeatures
}

// BinaryAdapter 输出单个正类概率的适配器
type BinaryAdapter interface {
	System() models.System
	Predict(ctx context.Context, in Input) (float64, error)
}

// NeuroPredictor EEG 适配器
type NeuroPredictor interface {
	Predict(ctx context.Context, in Input) (models.EEGOutput, error)
}

// ClinicalAdapter heart/diabetes/stroke 适配器
type ClinicalAdapter struct {
	bundle    ClinicalModelBundle
	transform Transform
}

// NewClinicalAdapter 校验 bundle 后创建适配器
func NewClinicalAdapter(b ClinicalModelBundle) (*ClinicalAdapter, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	transform, _, err := TransformFor(b.System)
	if err != nil {
		return nil, err
	}
	return &ClinicalAdapter{bundle: b, transform: transform}, nil
}

func (a *ClinicalAdapter) System() models.System {
	return a.bundle.System
}

// Bundle 返回 bundle 副本
func (a *ClinicalAdapter) Bundle() ClinicalModelBundle {
	return a.bundle
}

func (a *ClinicalAdapter) Predict(ctx context.Context, in Input) (float64, error) {
	x, err := prepare(a.bundle.System, a.transform, a.bundle.FeatureNames, a.bundle.Scaler, in)
	if err != nil {
		return 0, err
	}
	return predictBinary(ctx, a.bundle.System, a.bundle.Model, x)
}

// Flag 模型带阈值时给出风险判定 (prob > threshold)
func (a *ClinicalAdapter) Flag(prob float64) (models.ClinicalFlag, bool) {
	if a.bundle.Threshold == nil {
		return models.ClinicalFlag{}, false
	}
	return models.ClinicalFlag{
		System:      a.bundle.System,
		Probability: prob,
		Threshold:   *a.bundle.Threshold,
		Risk:        prob > *a.bundle.Threshold,
	}, true
}

// SignalAdapter ECG/EMG 适配器
type SignalAdapter struct {
	bundle    SignalModelBundle
	transform Transform
}

// NewSignalAdapter 校验 bundle 后创建适配器
func NewSignalAdapter(b SignalModelBundle) (*SignalAdapter, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	transform, _, err := TransformFor(b.System)
	if err != nil {
		return nil, err
	}
	return &SignalAdapter{bundle: b, transform: transform}, nil
}

func (a *SignalAdapter) System() models.System {
	return a.bundle.System
}

func (a *SignalAdapter) Predict(ctx context.Context, in Input) (float64, error) {
	x, err := prepare(a.bundle.System, a.transform, a.bundle.FeatureNames, a.bundle.Scaler, in)
	if err != nil {
		return 0, err
	}
	return predictBinary(ctx, a.bundle.System, a.bundle.Model, x)
}

// NeuroAdapter EEG 适配器
// eeg_neuro = 1 - p(normal)，eeg_epilepsy = p(epilepsy)
type NeuroAdapter struct {
	bundle NeuroModelBundle
}

// NewNeuroAdapter 校验 bundle 后创建适配器
func NewNeuroAdapter(b NeuroModelBundle) (*NeuroAdapter, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &NeuroAdapter{bundle: b}, nil
}

func (a *NeuroAdapter) Predict(ctx context.Context, in Input) (models.EEGOutput, error) {
	x, err := prepare(models.SystemEEG, EEGTransform, a.bundle.FeatureNames, a.bundle.Scaler, in)
	if err != nil {
		return models.EEGOutput{}, err
	}
	dist, err := a.bundle.Model.PredictDistribution(ctx, x)
	if err != nil {
		return models.EEGOutput{}, unavailable(models.SystemEEG, err)
	}
	if len(dist) != EEGNumClasses {
		return models.EEGOutput{}, &models.ShapeMismatchError{Component: "eeg output", Expected: EEGNumClasses, Actual: len(dist)}
	}
	var out models.EEGOutput
	for i, p := range dist {
		if err := checkProbability("eeg model", p); err != nil {
			return models.EEGOutput{}, unavailable(models.SystemEEG, err)
		}
		out.Distribution[i] = p
	}
	out.Neuro = math.Min(1, math.Max(0, 1-dist[0]))
	out.Epilepsy = dist[2]
	return out, nil
}

// prepare 特征工程 → 列选择 → 标准化
func prepare(system models.System, transform Transform, names []string, scaler Scaler, in Input) ([]float64, error) {
	row := transform(in.Vitals, in.Signals)
	x, err := row.Select(string(system), names)
	if err != nil {
		return nil, err
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &models.InvalidFeatureError{Feature: names[i], Value: v}
		}
	}
	if scaler == nil {
		return x, nil
	}
	scaled, err := scaler.Transform(x)
	if err != nil {
		return nil, fmt.Errorf("%s scaler: %w", system, err)
	}
	return scaled, nil
}

func predictBinary(ctx context.Context, system models.System, model BinaryModel, x []float64) (float64, error) {
	p, err := model.PredictProba(ctx, x)
	if err != nil {
		return 0, unavailable(system, err)
	}
	if err := checkProbability(string(system)+" model", p); err != nil {
		return 0, unavailable(system, err)
	}
	return p, nil
}

func unavailable(system models.System, err error) error {
	var pu *models.PredictorUnavailableError
	if errors.As(err, &pu) {
		return err
	}
	return &models.PredictorUnavailableError{System: system, Err: err}
}
