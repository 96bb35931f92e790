package predictor

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// 模型类型
const (
	KindLogistic = "logistic"
	KindSoftmax  = "softmax"
	KindRemote   = "remote"
)

// Artifact 模型产物文件（JSON）
type Artifact struct {
	Kind         string            `json:"kind"`
	Version      string            `json:"version,omitempty"`
	FeatureNames []string          `json:"feature_names,omitempty"`
	Threshold    *float64          `json:"threshold,omitempty"`
	Labels       []int             `json:"labels,omitempty"` // 多分类：模型输出下标 → 疾病编号
	Scaler       *ScalerArtifact   `json:"scaler,omitempty"`
	Logistic     *LogisticArtifact `json:"logistic,omitempty"`
	Softmax      *SoftmaxArtifact  `json:"softmax,omitempty"`
	Remote       *RemoteArtifact   `json:"remote,omitempty"`
}

// ScalerArtifact StandardScaler 参数
type ScalerArtifact struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LogisticArtifact 线性二分类参数
type LogisticArtifact struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// SoftmaxArtifact 多分类参数
type SoftmaxArtifact struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// RemoteArtifact 远程模型服务
type RemoteArtifact struct {
	BaseURL     string `json:"base_url"`
	Path        string `json:"path,omitempty"`
	Name        string `json:"name"`
	NumFeatures int    `json:"num_features"`
	NumClasses  int    `json:"num_classes,omitempty"`
	Timeout     string `json:"timeout,omitempty"`
	RetryCount  int    `json:"retry_count,omitempty"`
}

// LoadArtifact 读取并解析模型产物
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	a, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return a, nil
}

// ParseArtifact 解析模型产物
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}
	switch a.Kind {
	case KindLogistic:
		if a.Logistic == nil || len(a.Logistic.Weights) == 0 {
			return nil, fmt.Errorf("logistic artifact has no weights")
		}
	case KindSoftmax:
		if a.Softmax == nil {
			return nil, fmt.Errorf("softmax artifact has no weights")
		}
	case KindRemote:
		if a.Remote == nil || a.Remote.BaseURL == "" {
			return nil, fmt.Errorf("remote artifact has no base_url")
		}
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
	if a.Scaler != nil && len(a.Scaler.Mean) != len(a.Scaler.Scale) {
		return nil, fmt.Errorf("scaler mean/scale length mismatch: %d vs %d", len(a.Scaler.Mean), len(a.Scaler.Scale))
	}
	return &a, nil
}

// BuildScaler 未配置标准化器时返回 nil
func (a *Artifact) BuildScaler() Scaler {
	if a.Scaler == nil {
		return nil
	}
	return &StandardScaler{Mean: a.Scaler.Mean, Scale: a.Scaler.Scale}
}

// BuildBinary 构建二分类模型
func (a *Artifact) BuildBinary(logger *zap.Logger) (BinaryModel, error) {
	switch a.Kind {
	case KindLogistic:
		return &LogisticModel{Weights: a.Logistic.Weights, Bias: a.Logistic.Bias}, nil
	case KindRemote:
		return a.buildRemote(2, logger)
	default:
		return nil, fmt.Errorf("artifact kind %q cannot serve a binary model", a.Kind)
	}
}

// BuildMulticlass 构建多分类模型
func (a *Artifact) BuildMulticlass(logger *zap.Logger) (MulticlassModel, error) {
	switch a.Kind {
	case KindSoftmax:
		m := &SoftmaxModel{Weights: a.Softmax.Weights, Biases: a.Softmax.Biases}
		if err := m.validate(); err != nil {
			return nil, err
		}
		return m, nil
	case KindRemote:
		return a.buildRemote(0, logger)
	default:
		return nil, fmt.Errorf("artifact kind %q cannot serve a multiclass model", a.Kind)
	}
}

func (a *Artifact) buildRemote(defaultClasses int, logger *zap.Logger) (*RemoteModel, error) {
	r := a.Remote
	numClasses := r.NumClasses
	if numClasses == 0 {
		numClasses = defaultClasses
	}
	if numClasses == 0 {
		return nil, fmt.Errorf("remote model %s: num_classes is required", r.Name)
	}
	var timeout time.Duration
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return nil, fmt.Errorf("remote model %s: invalid timeout %q: %w", r.Name, r.Timeout, err)
		}
		timeout = d
	}
	return NewRemoteModel(RemoteModelOptions{
		BaseURL:     r.BaseURL,
		Path:        r.Path,
		Name:        r.Name,
		NumFeatures: r.NumFeatures,
		NumClasses:  numClasses,
		Timeout:     timeout,
		RetryCount:  r.RetryCount,
	}, logger), nil
}
