package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/metafeature"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/predictor"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/registry"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/rules"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/signal"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 出错组件名称
const (
	ComponentVitals         = "vitals"
	ComponentPredictors     = "predictors"
	ComponentMetaFeatures   = "meta_features"
	ComponentMetaClassifier = "meta_classifier"
)

// DefaultPredictorTimeout 单个上游预测器的默认超时
const DefaultPredictorTimeout = 2 * time.Second

// ResultSink 诊断完成后的落地目标（数据库、缓存等）
// 写入失败只记录日志，不影响诊断结果
type ResultSink interface {
	Name() string
	Record(ctx context.Context, d *models.FinalDiagnosis) error
}

// DiagnosisService 诊断流水线
// vitals → 信号特征 → 六个预测器（并行）→ 元特征 → 元分类器 → 规则引擎
type DiagnosisService struct {
	registry *registry.Registry
	engine   *rules.Engine
	timeout  time.Duration
	sinks    []ResultSink
	logger   *zap.Logger
	now      func() time.Time
}

// NewDiagnosisService 创建诊断服务
func NewDiagnosisService(reg *registry.Registry, timeout time.Duration, logger *zap.Logger, sinks ...ResultSink) *DiagnosisService {
	if timeout <= 0 {
		timeout = DefaultPredictorTimeout
	}
	return &DiagnosisService{
		registry: reg,
		engine:   rules.NewEngine(),
		timeout:  timeout,
		sinks:    sinks,
		logger:   logger,
		now:      time.Now,
	}
}

// Registry 当前使用的模型注册表
func (s *DiagnosisService) Registry() *registry.Registry {
	return s.registry
}

// Diagnose 执行一次完整诊断
// 任一预测器失败或超时都使整个请求失败，不返回部分结果
func (s *DiagnosisService) Diagnose(ctx context.Context, req models.DiagnoseRequest) (*models.FinalDiagnosis, error) {
	start := s.now()

	vitals, err := req.Vitals.ToVitals()
	if err != nil {
		return nil, &models.ComponentError{Component: ComponentVitals, Err: err}
	}

	signals, clamped := signal.Synthesize(vitals)
	warnings := signal.PlausibilityWarnings(vitals)
	if len(clamped) > 0 || len(warnings) > 0 {
		s.logger.Debug("Vitals outside nominal range",
			zap.String("patient_id", req.PatientID),
			zap.Int("clamped", len(clamped)),
			zap.Strings("warnings", warnings),
		)
	}

	probs, flags, err := s.predictAll(ctx, predictor.Input{Vitals: vitals, Signals: signals})
	if err != nil {
		return nil, &models.ComponentError{Component: ComponentPredictors, Err: err}
	}

	if err := metafeature.Validate(probs); err != nil {
		return nil, &models.ComponentError{Component: ComponentMetaFeatures, Err: err}
	}
	mf, vector := metafeature.Build(probs)

	decision, err := s.registry.Meta().Predict(ctx, vector.Slice())
	if err != nil {
		return nil, &models.ComponentError{Component: ComponentMetaClassifier, Err: err}
	}

	outcome := s.engine.Evaluate(rules.RuleInput{
		Vitals:        vitals,
		Probabilities: probs,
		MetaFeatures:  mf,
		Meta:          decision,
	})

	id := req.RequestID
	if id == "" {
		id = uuid.New().String()
	}
	now := s.now()
	diagnosis := &models.FinalDiagnosis{
		ID:              id,
		PatientID:       req.PatientID,
		FinalClass:      outcome.FinalClass,
		DiseaseName:     outcome.FinalClass.Name(),
		MetaClass:       decision.PredictedClass,
		Confidence:      decision.Confidence,
		RuleOverridden:  outcome.Overridden,
		RuleID:          outcome.RuleID,
		RuleLevel:       outcome.Level,
		FallbackApplied: outcome.FallbackApplied,
		ProxyScores:     outcome.ProxyScores,
		Distribution:    decision.DistributionMap(),
		Probabilities:   probs,
		MetaFeatures:    mf,
		Vitals:          vitals,
		Assessment:      Assess(probs, mf, flags),
		Diagnostics: models.Diagnostics{
			SignalFeatures: signals,
			Clamped:        clamped,
			Warnings:       warnings,
			LatencyMs:      now.Sub(start).Milliseconds(),
		},
		ModelVersion: s.registry.Version(),
		CreatedAt:    now.UTC(),
	}

	s.logger.Info("Diagnosis completed",
		zap.String("diagnosis_id", diagnosis.ID),
		zap.String("patient_id", diagnosis.PatientID),
		zap.Int("final_class", int(diagnosis.FinalClass)),
		zap.Int("meta_class", int(diagnosis.MetaClass)),
		zap.Float64("confidence", diagnosis.Confidence),
		zap.String("rule_id", diagnosis.RuleID),
		zap.Bool("overridden", diagnosis.RuleOverridden),
		zap.Int64("latency_ms", diagnosis.Diagnostics.LatencyMs),
	)

	s.record(ctx, diagnosis)
	return diagnosis, nil
}

// predictAll 并行调用六个预测器，全部完成后汇合
func (s *DiagnosisService) predictAll(ctx context.Context, in predictor.Input) (models.UpstreamProbabilities, []models.ClinicalFlag, error) {
	binary := s.registry.Binary()
	results := make([]float64, len(binary))
	var eeg models.EEGOutput

	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range binary {
		i, adapter := i, adapter
		g.Go(func() error {
			p, err := callWithTimeout(gctx, s.timeout, adapter.System(), func(c context.Context) (float64, error) {
				return adapter.Predict(c, in)
			})
			results[i] = p
			return err
		})
	}
	g.Go(func() error {
		out, err := callWithTimeout(gctx, s.timeout, models.SystemEEG, func(c context.Context) (models.EEGOutput, error) {
			return s.registry.EEG().Predict(c, in)
		})
		eeg = out
		return err
	})
	if err := g.Wait(); err != nil {
		return models.UpstreamProbabilities{}, nil, err
	}

	var probs models.UpstreamProbabilities
	var flags []models.ClinicalFlag
	for i, adapter := range binary {
		switch adapter.System() {
		case models.SystemHeart:
			probs.Heart = results[i]
		case models.SystemDiabetes:
			probs.Diabetes = results[i]
		case models.SystemStroke:
			probs.Stroke = results[i]
		case models.SystemECG:
			probs.ECG = results[i]
		case models.SystemEMG:
			probs.EMG = results[i]
		}
		if f, ok := adapter.(registry.Flagger); ok {
			if flag, has := f.Flag(results[i]); has {
				flags = append(flags, flag)
			}
		}
	}
	probs.EEGNeuro = eeg.Neuro
	probs.EEGEpilepsy = eeg.Epilepsy
	return probs, flags, nil
}

// callWithTimeout 在独立 goroutine 中调用预测器；超时后立即返回，不等待挂起的调用
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, system models.System, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		ch <- result{val: v, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return zero, asPredictorError(system, r.err)
		}
		return r.val, nil
	case <-cctx.Done():
		return zero, &models.PredictorUnavailableError{
			System: system,
			Err:    fmt.Errorf("no response within %s: %w", timeout, cctx.Err()),
		}
	}
}

// asPredictorError 输入契约错误原样返回，其余视为预测器不可用
func asPredictorError(system models.System, err error) error {
	var (
		missing     *models.MissingFeatureError
		invalid     *models.InvalidFeatureError
		shape       *models.ShapeMismatchError
		unavailable *models.PredictorUnavailableError
	)
	if errors.As(err, &missing) || errors.As(err, &invalid) || errors.As(err, &shape) || errors.As(err, &unavailable) {
		return err
	}
	return &models.PredictorUnavailableError{System: system, Err: err}
}

func (s *DiagnosisService) record(ctx context.Context, d *models.FinalDiagnosis) {
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, d); err != nil {
			s.logger.Error("Failed to record diagnosis",
				zap.String("sink", sink.Name()),
				zap.String("diagnosis_id", d.ID),
				zap.Error(err),
			)
		}
	}
}
