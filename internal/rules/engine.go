// Package rules 规则覆盖层
//
// 有序的首条命中决策表：Level 1 危及生命 → Level 2 代谢/血压 → Level 3 信号类
// → Level 4 健康 → Level 5 元分类器结果；没有规则命中且元分类器置信度不足时，
// 使用代理分数兜底。引擎无状态，每次请求独立求值。
package rules

import (
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
)

// 规则层级
const (
	LevelLifeThreatening = 1
	LevelMetabolic       = 2
	LevelSignal          = 3
	LevelHealthy         = 4
	LevelMeta            = 5
)

// 非规则决策的 ID
const (
	RuleMetaClassifier     = "L5_META"
	RuleConfidenceFallback = "L5_CONFIDENCE_FALLBACK"
)

// RuleInput 规则求值所需的全部输入（只读）
type RuleInput struct {
	Vitals        models.PatientVitals
	Probabilities models.UpstreamProbabilities
	MetaFeatures  models.MetaFeatures
	Meta          models.MetaDecision
}

// Rule 决策表中的一行
type Rule struct {
	ID    string
	Level int
	Class models.DiseaseClass
	Match func(in RuleInput) bool
}

// Outcome 规则引擎的决策及其解释
type Outcome struct {
	FinalClass      models.DiseaseClass `json:"final_class"`
	MetaClass       models.DiseaseClass `json:"meta_class"`
	RuleID          string              `json:"rule_id"`
	Level           int                 `json:"level"`
	RuleFired       bool                `json:"rule_fired"`
	FallbackApplied bool                `json:"fallback_applied"`
	ProxyScores     []float64           `json:"proxy_scores,omitempty"`
	Overridden      bool                `json:"overridden"`
}

// Engine 规则引擎
type Engine struct {
	rules               []Rule
	confidenceThreshold float64
}

// NewEngine 按层级顺序组装决策表
func NewEngine() *Engine {
	var table []Rule
	table = append(table, level1Rules()...)
	table = append(table, level2Rules()...)
	table = append(table, level3Rules()...)
	table = append(table, level4Rules()...)
	return &Engine{
		rules:               table,
		confidenceThreshold: ConfidenceThreshold,
	}
}

// Rules 决策表副本（按求值顺序）
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate 求值
func (e *Engine) Evaluate(in RuleInput) Outcome {
	out := Outcome{
		MetaClass: in.Meta.PredictedClass,
	}

	for _, r := range e.rules {
		if r.Match(in) {
			out.FinalClass = r.Class
			out.RuleID = r.ID
			out.Level = r.Level
			out.RuleFired = true
			out.Overridden = out.FinalClass != out.MetaClass
			return out
		}
	}

	out.FinalClass = in.Meta.PredictedClass
	out.RuleID = RuleMetaClassifier
	out.Level = LevelMeta

	if in.Meta.Confidence < e.confidenceThreshold {
		scores := ProxyScores(in.Probabilities, in.MetaFeatures)
		out.FinalClass = argmaxClass(scores)
		out.RuleID = RuleConfidenceFallback
		out.FallbackApplied = true
		out.ProxyScores = scores[:]
	}

	out.Overridden = out.FinalClass != out.MetaClass
	return out
}
