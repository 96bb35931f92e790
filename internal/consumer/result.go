// Package consumer 异步诊断入口（Redis Streams、MQTT）与最新诊断缓存
package consumer

import (
	"context"
	"errors"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
)

// Diagnoser 诊断流水线（service.DiagnosisService 实现）
type Diagnoser interface {
	Diagnose(ctx context.Context, req models.DiagnoseRequest) (*models.FinalDiagnosis, error)
}

// newResult 将诊断结果或错误包装为异步通道上的统一结果
func newResult(req models.DiagnoseRequest, d *models.FinalDiagnosis, err error) models.DiagnoseResult {
	res := models.DiagnoseResult{
		RequestID: req.RequestID,
		PatientID: req.PatientID,
	}
	if err != nil {
		res.Error = err.Error()
		var ce *models.ComponentError
		if errors.As(err, &ce) {
			res.Component = ce.Component
		}
		return res
	}
	res.Success = true
	res.Diagnosis = d
	if d != nil {
		res.RequestID = d.ID
	}
	return res
}
