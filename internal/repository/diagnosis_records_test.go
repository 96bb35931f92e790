package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockDiagnosisDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *DiagnosisRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewDiagnosisRepository(db, zap.NewNop())
	return db, mock, repo
}

func sampleDiagnosis() *models.FinalDiagnosis {
	return &models.FinalDiagnosis{
		ID:             uuid.New().String(),
		PatientID:      "p-1",
		FinalClass:     models.Stroke,
		DiseaseName:    models.Stroke.Name(),
		MetaClass:      models.Hypertension,
		Confidence:     0.72,
		RuleOverridden: true,
		RuleID:         "L1_STROKE_SEVERE_BP",
		RuleLevel:      1,
		Distribution:   map[int]float64{0: 0.1, 1: 0.18, 3: 0.72},
		MetaFeatures:   models.MetaFeatures{NCMIndex: 61.5},
		Assessment:     models.Assessment{RiskCategory: "High"},
		ModelVersion:   "v1",
		CreatedAt:      time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestCreate_Success(t *testing.T) {
	db, mock, repo := setupMockDiagnosisDB(t)
	defer db.Close()

	d := sampleDiagnosis()
	mock.ExpectExec(`INSERT INTO diagnosis_records`).
		WithArgs(
			d.ID, "p-1", 1, "Stroke", 3, 0.72,
			"L1_STROKE_SEVERE_BP", 1, true, false,
			"High", 61.5, "v1", sqlmock.AnyArg(), d.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Record(context.Background(), d))
	assert.Equal(t, "postgres", repo.Name())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Error(t *testing.T) {
	db, mock, repo := setupMockDiagnosisDB(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO diagnosis_records`).WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), sampleDiagnosis())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	assert.Error(t, repo.Create(context.Background(), &models.FinalDiagnosis{}))
}

func TestGet_Success(t *testing.T) {
	db, mock, repo := setupMockDiagnosisDB(t)
	defer db.Close()

	d := sampleDiagnosis()
	payload, err := json.Marshal(d)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT payload`).
		WithArgs(d.ID).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := repo.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, models.Stroke, got.FinalClass)
	assert.Equal(t, 0.72, got.Distribution[3])
	assert.True(t, got.CreatedAt.Equal(d.CreatedAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	db, mock, repo := setupMockDiagnosisDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT payload`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrDiagnosisNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestList_WithFilters(t *testing.T) {
	db, mock, repo := setupMockDiagnosisDB(t)
	defer db.Close()

	a, b := sampleDiagnosis(), sampleDiagnosis()
	pa, _ := json.Marshal(a)
	pb, _ := json.Marshal(b)

	patientID := "p-1"
	class := 1
	mock.ExpectQuery(`SELECT payload FROM diagnosis_records WHERE patient_id = \$1 AND final_class = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs(patientID, class, 10).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(pa).AddRow(pb))

	list, err := repo.List(context.Background(), DiagnosisFilters{PatientID: &patientID, FinalClass: &class, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_DefaultLimitAndOffset(t *testing.T) {
	db, mock, repo := setupMockDiagnosisDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT payload FROM diagnosis_records ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(DefaultListLimit, 20).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{broken`)))

	list, err := repo.List(context.Background(), DiagnosisFilters{Offset: 20})
	require.NoError(t, err)
	assert.Empty(t, list, "unreadable payloads are skipped")

	require.NoError(t, mock.ExpectationsWereMet())
}
