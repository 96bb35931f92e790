// Package metaclf 元分类器：12 维元特征 → 9 类疾病分布
package metaclf

import (
	"context"
	"fmt"
	"math"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/predictor"
)

// DistributionTolerance 分布求和允许的误差
const DistributionTolerance = 1e-6

// Classifier 包装多分类模型，负责形状校验、分布归一化与标签映射
type Classifier struct {
	model  predictor.MulticlassModel
	labels []models.DiseaseClass
}

// New 创建元分类器
// labels 为空时模型输出下标即疾病编号；否则 labels[i] 为第 i 列对应的疾病编号
func New(model predictor.MulticlassModel, labels []int) (*Classifier, error) {
	if model == nil {
		return nil, fmt.Errorf("meta classifier: model is required")
	}
	if model.NumFeatures() != models.MetaFeatureDim {
		return nil, &models.ShapeMismatchError{Component: "meta classifier input", Expected: models.MetaFeatureDim, Actual: model.NumFeatures()}
	}

	c := &Classifier{model: model}
	if len(labels) == 0 {
		if model.NumClasses() != models.NumDiseaseClasses {
			return nil, &models.ShapeMismatchError{Component: "meta classifier output", Expected: models.NumDiseaseClasses, Actual: model.NumClasses()}
		}
		return c, nil
	}

	if len(labels) != model.NumClasses() {
		return nil, &models.ShapeMismatchError{
			Component: "meta classifier labels",
			Expected:  model.NumClasses(),
			Actual:    len(labels),
			Detail:    fmt.Sprintf("label map has %d entries for %d model classes", len(labels), model.NumClasses()),
		}
	}
	seen := make(map[models.DiseaseClass]bool, len(labels))
	for _, l := range labels {
		class, err := models.ParseDiseaseClass(l)
		if err != nil {
			return nil, err
		}
		if seen[class] {
			return nil, fmt.Errorf("meta classifier: duplicate label %d", l)
		}
		seen[class] = true
		c.labels = append(c.labels, class)
	}
	return c, nil
}

// Predict 预测疾病类别
// 输入维度不是 12 时在调用模型前返回 ShapeMismatchError
func (c *Classifier) Predict(ctx context.Context, vector []float64) (models.MetaDecision, error) {
	if len(vector) != models.MetaFeatureDim {
		return models.MetaDecision{}, &models.ShapeMismatchError{Component: "meta classifier input", Expected: models.MetaFeatureDim, Actual: len(vector)}
	}

	raw, err := c.model.PredictDistribution(ctx, vector)
	if err != nil {
		return models.MetaDecision{}, fmt.Errorf("meta classifier inference failed: %w", err)
	}
	if len(raw) != c.model.NumClasses() {
		return models.MetaDecision{}, &models.ShapeMismatchError{Component: "meta classifier output", Expected: c.model.NumClasses(), Actual: len(raw)}
	}

	normalized, err := Normalize(raw)
	if err != nil {
		return models.MetaDecision{}, err
	}

	var decision models.MetaDecision
	for i, p := range normalized {
		class := models.DiseaseClass(i)
		if c.labels != nil {
			class = c.labels[i]
		}
		if !class.Valid() {
			return models.MetaDecision{}, &models.InvalidClassError{Label: int(class)}
		}
		decision.Distribution[class] = p
	}

	decision.PredictedClass, decision.Confidence = Argmax(decision.Distribution[:])
	return decision, nil
}

// Normalize 校验分布：有限、非负、和为正；偏离 1 超过容差时重新归一化
func Normalize(dist []float64) ([]float64, error) {
	var sum float64
	for i, p := range dist {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, fmt.Errorf("%w: entry %d is %v", models.ErrInvalidDistribution, i, p)
		}
		sum += p
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: sum is %v", models.ErrInvalidDistribution, sum)
	}
	out := make([]float64, len(dist))
	copy(out, dist)
	if math.Abs(sum-1) > DistributionTolerance {
		for i := range out {
			out[i] /= sum
		}
	}
	return out, nil
}

// Argmax 最大值下标，并列时取最小下标
func Argmax(values []float64) (models.DiseaseClass, float64) {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return models.DiseaseClass(best), values[best]
}
