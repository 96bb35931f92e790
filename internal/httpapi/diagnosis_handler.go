package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/registry"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/repository"

	"go.uber.org/zap"
)

// Diagnoser 诊断流水线
type Diagnoser interface {
	Diagnose(ctx context.Context, req models.DiagnoseRequest) (*models.FinalDiagnosis, error)
}

// DiagnosisStore 诊断历史（repository.DiagnosisRepository 实现）
type DiagnosisStore interface {
	Get(ctx context.Context, id string) (*models.FinalDiagnosis, error)
	List(ctx context.Context, filters repository.DiagnosisFilters) ([]*models.FinalDiagnosis, error)
}

// LatestStore 患者最新诊断（consumer.CacheManager 实现）
type LatestStore interface {
	GetLatest(ctx context.Context, patientID string) (*models.FinalDiagnosis, error)
}

// ModelCatalog 已加载模型（registry.Registry 实现）
type ModelCatalog interface {
	Version() string
	Info() []registry.ModelInfo
}

// DiagnosisHandler 诊断接口
// store / latest 为 nil 时对应接口返回 503
type DiagnosisHandler struct {
	diagnoser     Diagnoser
	store         DiagnosisStore
	latest        LatestStore
	models        ModelCatalog
	exportMaxRows int
	logger        *zap.Logger
}

// NewDiagnosisHandler 创建诊断接口
func NewDiagnosisHandler(
	diagnoser Diagnoser,
	store DiagnosisStore,
	latest LatestStore,
	catalog ModelCatalog,
	exportMaxRows int,
	logger *zap.Logger,
) *DiagnosisHandler {
	if exportMaxRows <= 0 {
		exportMaxRows = repository.MaxListLimit
	}
	return &DiagnosisHandler{
		diagnoser:     diagnoser,
		store:         store,
		latest:        latest,
		models:        catalog,
		exportMaxRows: exportMaxRows,
		logger:        logger,
	}
}

// ModelsResponse GET /models 响应
type ModelsResponse struct {
	Version string               `json:"version"`
	Models  []registry.ModelInfo `json:"models"`
}

// ListResponse GET /diagnoses 响应
type ListResponse struct {
	Items []*models.FinalDiagnosis `json:"items"`
	Total int                      `json:"total"`
}

// Predict POST /diagnosis/api/v1/predict
func (h *DiagnosisHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req models.DiagnoseRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body: "+err.Error()))
		return
	}

	d, err := h.diagnoser.Diagnose(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Diagnosis failed",
				zap.String("patient_id", req.PatientID),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(d))
}

// GetDiagnosis GET /diagnosis/api/v1/diagnoses/{id}
func (h *DiagnosisHandler) GetDiagnosis(w http.ResponseWriter, r *http.Request, id string) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, Fail("diagnosis history is not enabled"))
		return
	}
	d, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(d))
}

// ListDiagnoses GET /diagnosis/api/v1/diagnoses
func (h *DiagnosisHandler) ListDiagnoses(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, Fail("diagnosis history is not enabled"))
		return
	}
	filters, err := parseFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}

	items, err := h.store.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list diagnoses", zap.Error(err))
		writeError(w, err)
		return
	}
	if items == nil {
		items = []*models.FinalDiagnosis{}
	}
	writeJSON(w, http.StatusOK, Ok(ListResponse{Items: items, Total: len(items)}))
}

// ExportDiagnoses GET /diagnosis/api/v1/diagnoses/export（xlsx）
func (h *DiagnosisHandler) ExportDiagnoses(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, Fail("diagnosis history is not enabled"))
		return
	}
	filters, err := parseFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	filters.Limit = h.exportMaxRows
	filters.Offset = 0

	items, err := h.store.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list diagnoses for export", zap.Error(err))
		writeError(w, err)
		return
	}

	data, err := GenerateDiagnosisExport(items)
	if err != nil {
		h.logger.Error("Failed to generate diagnosis export", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}

	filename := fmt.Sprintf("diagnoses_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GetLatest GET /diagnosis/api/v1/patients/{patient_id}/latest
func (h *DiagnosisHandler) GetLatest(w http.ResponseWriter, r *http.Request, patientID string) {
	if h.latest == nil {
		writeJSON(w, http.StatusServiceUnavailable, Fail("latest diagnosis cache is not enabled"))
		return
	}
	d, err := h.latest.GetLatest(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(d))
}

// ListModels GET /diagnosis/api/v1/models
func (h *DiagnosisHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(ModelsResponse{
		Version: h.models.Version(),
		Models:  h.models.Info(),
	}))
}

// parseFilters 解析 patient_id, final_class, since, until, overridden, limit, offset
func parseFilters(r *http.Request) (repository.DiagnosisFilters, error) {
	q := r.URL.Query()
	var f repository.DiagnosisFilters

	if v := q.Get("patient_id"); v != "" {
		f.PatientID = &v
	}
	if v := q.Get("final_class"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || !models.DiseaseClass(c).Valid() {
			return f, fmt.Errorf("invalid final_class: %s", v)
		}
		f.FinalClass = &c
	}
	since, err := parseTime(q.Get("since"))
	if err != nil {
		return f, fmt.Errorf("invalid since: %w", err)
	}
	f.Since = since
	until, err := parseTime(q.Get("until"))
	if err != nil {
		return f, fmt.Errorf("invalid until: %w", err)
	}
	f.Until = until
	if v := q.Get("overridden"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid overridden: %s", v)
		}
		f.Overridden = &b
	}
	f.Limit = parseInt(q.Get("limit"), repository.DefaultListLimit)
	f.Offset = parseInt(q.Get("offset"), 0)
	return f, nil
}
