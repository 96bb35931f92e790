// Package registry 模型注册表
//
// 进程启动时一次性加载六个上游预测器与元分类器，之后只读共享。
// 测试可以用 New 直接注入桩模型。
package registry

import (
	"context"
	"fmt"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/predictor"
)

// MetaClassifier 元分类器契约
type MetaClassifier interface {
	Predict(ctx context.Context, vector []float64) (models.MetaDecision, error)
}

// Flagger 带阈值的临床模型
type Flagger interface {
	Flag(prob float64) (models.ClinicalFlag, bool)
}

// Components 注册表组成部分
type Components struct {
	Version  string
	Heart    predictor.BinaryAdapter
	Diabetes predictor.BinaryAdapter
	Stroke   predictor.BinaryAdapter
	ECG      predictor.BinaryAdapter
	EEG      predictor.NeuroPredictor
	EMG      predictor.BinaryAdapter
	Meta     MetaClassifier
}

// ModelInfo 模型摘要（/models 接口与 CLI 使用）
type ModelInfo struct {
	System       string   `json:"system"`
	Kind         string   `json:"kind"`
	Artifact     string   `json:"artifact,omitempty"`
	Version      string   `json:"version,omitempty"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Threshold    *float64 `json:"threshold,omitempty"`
	Scaled       bool     `json:"scaled"`
}

// Registry 不可变的模型注册表
type Registry struct {
	c    Components
	info []ModelInfo
}

// New 由已构建的组件创建注册表
func New(c Components) (*Registry, error) {
	missing := []struct {
		name string
		ok   bool
	}{
		{"heart", c.Heart != nil},
		{"diabetes", c.Diabetes != nil},
		{"stroke", c.Stroke != nil},
		{"ecg", c.ECG != nil},
		{"eeg", c.EEG != nil},
		{"emg", c.EMG != nil},
		{"meta", c.Meta != nil},
	}
	for _, m := range missing {
		if !m.ok {
			return nil, fmt.Errorf("registry: %s model is required", m.name)
		}
	}
	return &Registry{c: c}, nil
}

func (r *Registry) Version() string { return r.c.Version }

// Binary 五个二分类适配器（EEG 除外），按系统固定顺序
func (r *Registry) Binary() []predictor.BinaryAdapter {
	return []predictor.BinaryAdapter{r.c.Heart, r.c.Diabetes, r.c.Stroke, r.c.ECG, r.c.EMG}
}

func (r *Registry) Heart() predictor.BinaryAdapter    { return r.c.Heart }
func (r *Registry) Diabetes() predictor.BinaryAdapter { return r.c.Diabetes }
func (r *Registry) Stroke() predictor.BinaryAdapter   { return r.c.Stroke }
func (r *Registry) ECG() predictor.BinaryAdapter      { return r.c.ECG }
func (r *Registry) EEG() predictor.NeuroPredictor     { return r.c.EEG }
func (r *Registry) EMG() predictor.BinaryAdapter      { return r.c.EMG }
func (r *Registry) Meta() MetaClassifier              { return r.c.Meta }

// Info 模型摘要副本
func (r *Registry) Info() []ModelInfo {
	out := make([]ModelInfo, len(r.info))
	copy(out, r.info)
	return out
}
