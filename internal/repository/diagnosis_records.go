package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"go.uber.org/zap"
)

// ErrDiagnosisNotFound 诊断记录不存在
var ErrDiagnosisNotFound = errors.New("diagnosis not found")

// 列表查询默认/最大条数
const (
	DefaultListLimit = 50
	MaxListLimit     = 5000
)

// DiagnosisRepository 诊断记录仓库（diagnosis_records 表）
// 完整诊断以 JSONB 保存在 payload，常用过滤字段单独成列
type DiagnosisRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDiagnosisRepository 创建诊断记录仓库
func NewDiagnosisRepository(db *sql.DB, logger *zap.Logger) *DiagnosisRepository {
	return &DiagnosisRepository{
		db:     db,
		logger: logger,
	}
}

// DiagnosisFilters 列表过滤条件
type DiagnosisFilters struct {
	PatientID  *string
	FinalClass *int
	Since      *time.Time // created_at >= Since
	Until      *time.Time // created_at < Until
	Overridden *bool
	Limit      int
	Offset     int
}

// Name 实现 service.ResultSink
func (r *DiagnosisRepository) Name() string {
	return "postgres"
}

// Record 实现 service.ResultSink
func (r *DiagnosisRepository) Record(ctx context.Context, d *models.FinalDiagnosis) error {
	return r.Create(ctx, d)
}

// Create 写入一条诊断记录
func (r *DiagnosisRepository) Create(ctx context.Context, d *models.FinalDiagnosis) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("diagnosis id is required")
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnosis: %w", err)
	}

	query := `
		INSERT INTO diagnosis_records (
			diagnosis_id,
			patient_id,
			final_class,
			disease_name,
			meta_class,
			confidence,
			rule_id,
			rule_level,
			rule_overridden,
			fallback_applied,
			risk_category,
			ncm_index,
			model_version,
			payload,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(ctx, query,
		d.ID,
		nullString(d.PatientID),
		int(d.FinalClass),
		d.DiseaseName,
		int(d.MetaClass),
		d.Confidence,
		nullString(d.RuleID),
		d.RuleLevel,
		d.RuleOverridden,
		d.FallbackApplied,
		nullString(d.Assessment.RiskCategory),
		d.MetaFeatures.NCMIndex,
		nullString(d.ModelVersion),
		payload,
		d.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert diagnosis record",
			zap.String("diagnosis_id", d.ID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to insert diagnosis record: %w", err)
	}

	r.logger.Debug("Diagnosis record created",
		zap.String("diagnosis_id", d.ID),
		zap.String("patient_id", d.PatientID),
	)
	return nil
}

// Get 按 ID 获取诊断
func (r *DiagnosisRepository) Get(ctx context.Context, id string) (*models.FinalDiagnosis, error) {
	if id == "" {
		return nil, fmt.Errorf("diagnosis_id is required")
	}

	query := `
		SELECT payload
		FROM diagnosis_records
		WHERE diagnosis_id = $1
	`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDiagnosisNotFound, id)
		}
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}

	var d models.FinalDiagnosis
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagnosis %s: %w", id, err)
	}
	return &d, nil
}

// List 按条件查询诊断，按 created_at 倒序
func (r *DiagnosisRepository) List(ctx context.Context, filters DiagnosisFilters) ([]*models.FinalDiagnosis, error) {
	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.PatientID != nil {
		conditions = append(conditions, "patient_id = "+arg(*filters.PatientID))
	}
	if filters.FinalClass != nil {
		conditions = append(conditions, "final_class = "+arg(*filters.FinalClass))
	}
	if filters.Since != nil {
		conditions = append(conditions, "created_at >= "+arg(*filters.Since))
	}
	if filters.Until != nil {
		conditions = append(conditions, "created_at < "+arg(*filters.Until))
	}
	if filters.Overridden != nil {
		conditions = append(conditions, "rule_overridden = "+arg(*filters.Overridden))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := "SELECT payload FROM diagnosis_records"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT " + arg(limit)
	if filters.Offset > 0 {
		query += " OFFSET " + arg(filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	defer rows.Close()

	var out []*models.FinalDiagnosis
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan diagnosis: %w", err)
		}
		var d models.FinalDiagnosis
		if err := json.Unmarshal(payload, &d); err != nil {
			r.logger.Warn("Skipping unreadable diagnosis payload", zap.Error(err))
			continue
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diagnoses: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
