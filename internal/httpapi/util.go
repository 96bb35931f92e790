package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/consumer"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/repository"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	return json.Unmarshal(body, out)
}

// statusFor 错误类型到 HTTP 状态码
func statusFor(err error) int {
	var missing *models.MissingFeatureError
	var invalid *models.InvalidFeatureError
	var unavailable *models.PredictorUnavailableError
	var shape *models.ShapeMismatchError
	var class *models.InvalidClassError

	switch {
	case errors.As(err, &missing), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &shape), errors.As(err, &class), errors.Is(err, models.ErrInvalidDistribution):
		return http.StatusInternalServerError
	case errors.Is(err, repository.ErrDiagnosisNotFound), errors.Is(err, consumer.ErrLatestNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError 按错误类型写失败响应，带出错组件
func writeError(w http.ResponseWriter, err error) {
	var ce *models.ComponentError
	if errors.As(err, &ce) {
		writeJSON(w, statusFor(err), FailDetail(err.Error(), map[string]string{"component": ce.Component}))
		return
	}
	writeJSON(w, statusFor(err), Fail(err.Error()))
}
