package models

import (
	"errors"
	"fmt"
)

// MissingFeatureError 必需的生命体征或派生特征缺失（请求级致命错误，不允许默认值）
type MissingFeatureError struct {
	Feature string
	Context string // 缺失发生的位置，如 "vitals", "heart"
}

func (e *MissingFeatureError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("missing required feature %q (%s)", e.Feature, e.Context)
	}
	return fmt.Sprintf("missing required feature %q", e.Feature)
}

// InvalidFeatureError 特征值不是有限数（NaN/Inf）
type InvalidFeatureError struct {
	Feature string
	Value   float64
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("invalid value for feature %q: %v", e.Feature, e.Value)
}

// ShapeMismatchError 特征向量维度或列顺序与模型契约不一致
type ShapeMismatchError struct {
	Component string
	Expected  int
	Actual    int
	Detail    string // 列顺序不一致时的说明
}

func (e *ShapeMismatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: shape mismatch: %s", e.Component, e.Detail)
	}
	return fmt.Sprintf("%s: shape mismatch: expected %d, got %d", e.Component, e.Expected, e.Actual)
}

// PredictorUnavailableError 上游预测器加载失败、推理出错或超时
type PredictorUnavailableError struct {
	System System
	Err    error
}

func (e *PredictorUnavailableError) Error() string {
	return fmt.Sprintf("predictor %s unavailable: %v", e.System, e.Err)
}

func (e *PredictorUnavailableError) Unwrap() error {
	return e.Err
}

// InvalidClassError 分类器输出不在 0..8 之内
type InvalidClassError struct {
	Label int
}

func (e *InvalidClassError) Error() string {
	return fmt.Sprintf("classifier produced label %d outside the 0..8 taxonomy", e.Label)
}

// ErrInvalidDistribution 概率分布无法归一化
var ErrInvalidDistribution = errors.New("invalid probability distribution")

// ComponentError 标记出错的流水线组件，向调用方暴露 "哪个组件 + 原因"
type ComponentError struct {
	Component string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}
