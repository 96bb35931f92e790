// Package predictor 上游预测器适配层
//
// 每个适配器按固定顺序执行：特征工程 → 标准化 → 模型推理。
// 模型本身是外部能力（本地线性模型或远程模型服务），只依赖输入维度与输出契约。
package predictor

import (
	"context"
	"fmt"
	"math"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
)

// BinaryModel 二分类模型，返回正类概率
type BinaryModel interface {
	PredictProba(ctx context.Context, x []float64) (float64, error)
	NumFeatures() int
}

// MulticlassModel 多分类模型，返回各类概率
type MulticlassModel interface {
	PredictDistribution(ctx context.Context, x []float64) ([]float64, error)
	NumFeatures() int
	NumClasses() int
}

// Scaler 预先拟合好的输入标准化器
type Scaler interface {
	Transform(x []float64) ([]float64, error)
	NumFeatures() int
}

// StandardScaler (x - mean) / scale
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func (s *StandardScaler) NumFeatures() int {
	return len(s.Mean)
}

// Transform 返回新切片，不修改输入
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, &models.ShapeMismatchError{Component: "scaler", Expected: len(s.Mean), Actual: len(x)}
	}
	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// LogisticModel 线性二分类模型 sigmoid(w·x + b)
type LogisticModel struct {
	Weights []float64
	Bias    float64
}

func (m *LogisticModel) NumFeatures() int {
	return len(m.Weights)
}

func (m *LogisticModel) PredictProba(ctx context.Context, x []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(x) != len(m.Weights) {
		return 0, &models.ShapeMismatchError{Component: "logistic model", Expected: len(m.Weights), Actual: len(x)}
	}
	return sigmoid(dot(m.Weights, x) + m.Bias), nil
}

// SoftmaxModel 多项逻辑回归，Weights 为 classes × features
type SoftmaxModel struct {
	Weights [][]float64
	Biases  []float64
}

func (m *SoftmaxModel) NumClasses() int {
	return len(m.Weights)
}

func (m *SoftmaxModel) NumFeatures() int {
	if len(m.Weights) == 0 {
		return 0
	}
	return len(m.Weights[0])
}

func (m *SoftmaxModel) PredictDistribution(ctx context.Context, x []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(x) != m.NumFeatures() {
		return nil, &models.ShapeMismatchError{Component: "softmax model", Expected: m.NumFeatures(), Actual: len(x)}
	}
	logits := make([]float64, len(m.Weights))
	for k, w := range m.Weights {
		logits[k] = dot(w, x)
		if k < len(m.Biases) {
			logits[k] += m.Biases[k]
		}
	}
	return softmax(logits), nil
}

// validate 加载时检查权重矩阵是否规整
func (m *SoftmaxModel) validate() error {
	if len(m.Weights) == 0 {
		return fmt.Errorf("softmax model has no classes")
	}
	width := len(m.Weights[0])
	for k, row := range m.Weights {
		if len(row) != width {
			return &models.ShapeMismatchError{
				Component: "softmax model",
				Expected:  width,
				Actual:    len(row),
				Detail:    fmt.Sprintf("class %d has %d weights, expected %d", k, len(row), width),
			}
		}
	}
	if len(m.Biases) != 0 && len(m.Biases) != len(m.Weights) {
		return &models.ShapeMismatchError{Component: "softmax model", Expected: len(m.Weights), Actual: len(m.Biases), Detail: "bias count does not match class count"}
	}
	return nil
}

func dot(w, x []float64) float64 {
	var s float64
	for i := range w {
		s += w[i] * x[i]
	}
	return s
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		if l > maxLogit {
			maxLogit = l
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// checkProbability 模型输出必须是 [0,1] 内的有限数
func checkProbability(component string, p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
		return fmt.Errorf("%s returned invalid probability %v", component, p)
	}
	return nil
}
