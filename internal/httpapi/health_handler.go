package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthCheck 依赖探活（Postgres ping、Redis ping 等）
type HealthCheck func(ctx context.Context) error

// HealthHandler /health
type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
}

// NewHealthHandler 创建健康检查；checks 可以为空
func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status       string            `json:"status"`
	ModelVersion string            `json:"model_version"`
	Checks       map[string]string `json:"checks,omitempty"`
}

// Health 任一依赖失败时返回 503
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", ModelVersion: h.version}
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	for _, name := range names {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(names))
		}
		if err := h.checks[name](ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	if status != http.StatusOK {
		writeJSON(w, status, FailDetail("dependency check failed", resp))
		return
	}
	writeJSON(w, status, Ok(resp))
}
