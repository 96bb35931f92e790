package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/metaclf"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/predictor"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manifest 模型清单（YAML）
type Manifest struct {
	Version    string            `yaml:"version"`
	Predictors map[string]string `yaml:"predictors"` // system -> artifact 路径
	Meta       string            `yaml:"meta"`
}

// LoadManifest 读取模型清单
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	for _, system := range models.AllSystems {
		if m.Predictors[string(system)] == "" {
			return nil, fmt.Errorf("manifest: no artifact for %s", system)
		}
	}
	for name := range m.Predictors {
		if _, _, err := predictor.TransformFor(models.System(name)); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
	}
	if m.Meta == "" {
		return nil, fmt.Errorf("manifest: no artifact for meta classifier")
	}
	return &m, nil
}

// Load 按清单加载全部模型并在加载时完成形状校验
// artifact 路径相对于清单所在目录
func Load(manifestPath string, logger *zap.Logger) (*Registry, error) {
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(manifestPath)
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	c := Components{Version: m.Version}
	var info []ModelInfo

	for _, system := range []models.System{models.SystemHeart, models.SystemDiabetes, models.SystemStroke} {
		path := resolve(m.Predictors[string(system)])
		a, err := predictor.LoadArtifact(path)
		if err != nil {
			return nil, err
		}
		model, err := a.BuildBinary(logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", system, err)
		}
		adapter, err := predictor.NewClinicalAdapter(predictor.ClinicalModelBundle{
			System:       system,
			Model:        model,
			Scaler:       a.BuildScaler(),
			Threshold:    a.Threshold,
			FeatureNames: a.FeatureNames,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", system, err)
		}
		switch system {
		case models.SystemHeart:
			c.Heart = adapter
		case models.SystemDiabetes:
			c.Diabetes = adapter
		case models.SystemStroke:
			c.Stroke = adapter
		}
		info = append(info, newInfo(system, path, a, adapter.Bundle().FeatureNames))
	}

	for _, system := range []models.System{models.SystemECG, models.SystemEMG} {
		path := resolve(m.Predictors[string(system)])
		a, err := predictor.LoadArtifact(path)
		if err != nil {
			return nil, err
		}
		model, err := a.BuildBinary(logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", system, err)
		}
		bundle := predictor.SignalModelBundle{
			System:       system,
			Model:        model,
			Scaler:       a.BuildScaler(),
			FeatureNames: a.FeatureNames,
		}
		adapter, err := predictor.NewSignalAdapter(bundle)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", system, err)
		}
		if system == models.SystemECG {
			c.ECG = adapter
		} else {
			c.EMG = adapter
		}
		_, names, _ := predictor.TransformFor(system)
		if len(a.FeatureNames) > 0 {
			names = a.FeatureNames
		}
		info = append(info, newInfo(system, path, a, names))
	}

	eegPath := resolve(m.Predictors[string(models.SystemEEG)])
	eegArtifact, err := predictor.LoadArtifact(eegPath)
	if err != nil {
		return nil, err
	}
	eegModel, err := eegArtifact.BuildMulticlass(logger)
	if err != nil {
		return nil, fmt.Errorf("eeg: %w", err)
	}
	c.EEG, err = predictor.NewNeuroAdapter(predictor.NeuroModelBundle{
		Model:        eegModel,
		Scaler:       eegArtifact.BuildScaler(),
		FeatureNames: eegArtifact.FeatureNames,
	})
	if err != nil {
		return nil, fmt.Errorf("eeg: %w", err)
	}
	eegNames := predictor.EEGFeatureNames
	if len(eegArtifact.FeatureNames) > 0 {
		eegNames = eegArtifact.FeatureNames
	}
	info = append(info, newInfo(models.SystemEEG, eegPath, eegArtifact, eegNames))

	metaPath := resolve(m.Meta)
	metaArtifact, err := predictor.LoadArtifact(metaPath)
	if err != nil {
		return nil, err
	}
	metaModel, err := metaArtifact.BuildMulticlass(logger)
	if err != nil {
		return nil, fmt.Errorf("meta: %w", err)
	}
	c.Meta, err = metaclf.New(metaModel, metaArtifact.Labels)
	if err != nil {
		return nil, fmt.Errorf("meta: %w", err)
	}
	info = append(info, newInfo("meta", metaPath, metaArtifact, models.MetaFeatureNames[:]))

	r, err := New(c)
	if err != nil {
		return nil, err
	}
	r.info = info

	logger.Info("Model registry loaded",
		zap.String("manifest", manifestPath),
		zap.String("version", m.Version),
		zap.Int("models", len(info)),
	)
	return r, nil
}

func newInfo(system models.System, path string, a *predictor.Artifact, names []string) ModelInfo {
	return ModelInfo{
		System:       string(system),
		Kind:         a.Kind,
		Artifact:     filepath.Base(path),
		Version:      a.Version,
		FeatureNames: names,
		Threshold:    a.Threshold,
		Scaled:       a.Scaler != nil,
	}
}
