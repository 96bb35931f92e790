package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const apiPrefix = "/diagnosis/api/v1"

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func methodIs(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterDiagnosisRoutes 注册诊断相关路由
func (r *Router) RegisterDiagnosisRoutes(h *DiagnosisHandler) {
	r.Handle(apiPrefix+"/predict", methodIs(http.MethodPost, h.Predict))

	r.Handle(apiPrefix+"/diagnoses", methodIs(http.MethodGet, h.ListDiagnoses))

	// diagnoses/export 或 diagnoses/{id}
	r.Handle(apiPrefix+"/diagnoses/", methodIs(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, apiPrefix+"/diagnoses/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if id == "export" {
			h.ExportDiagnoses(w, req)
			return
		}
		h.GetDiagnosis(w, req, id)
	}))

	// patients/{patient_id}/latest
	r.Handle(apiPrefix+"/patients/", methodIs(http.MethodGet, func(w http.ResponseWriter, req *http.Request) {
		rest := strings.TrimPrefix(req.URL.Path, apiPrefix+"/patients/")
		patientID, suffix, ok := strings.Cut(rest, "/")
		if !ok || patientID == "" || suffix != "latest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetLatest(w, req, patientID)
	}))

	r.Handle(apiPrefix+"/models", methodIs(http.MethodGet, h.ListModels))
}

// RegisterHealthRoutes 健康检查
func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/health", methodIs(http.MethodGet, h.Health))
}
