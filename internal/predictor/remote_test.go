package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRemoteModel_PredictProba(t *testing.T) {
	var received RemoteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"probabilities":[0.3,0.7]}`))
	}))
	defer server.Close()

	model := NewRemoteModel(RemoteModelOptions{BaseURL: server.URL, Name: "heart", NumFeatures: 2}, zap.NewNop())

	p, err := model.PredictProba(context.Background(), []float64{1.5, 2.5})
	require.NoError(t, err)
	assert.Equal(t, 0.7, p)
	assert.Equal(t, "heart", received.Model)
	assert.Equal(t, []float64{1.5, 2.5}, received.Features)
	assert.Equal(t, 2, model.NumClasses())
}

func TestRemoteModel_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	model := NewRemoteModel(RemoteModelOptions{BaseURL: server.URL, Name: "eeg", NumFeatures: 2, NumClasses: 3}, zap.NewNop())

	_, err := model.PredictDistribution(context.Background(), []float64{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestRemoteModel_WrongDistributionLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"probabilities":[0.5,0.5]}`))
	}))
	defer server.Close()

	model := NewRemoteModel(RemoteModelOptions{BaseURL: server.URL, Name: "eeg", NumFeatures: 2, NumClasses: 3}, zap.NewNop())

	_, err := model.PredictDistribution(context.Background(), []float64{1, 2})
	var sme *models.ShapeMismatchError
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, 3, sme.Expected)
	assert.Equal(t, 2, sme.Actual)

	_, err = model.PredictDistribution(context.Background(), []float64{1})
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, "remote model eeg", sme.Component)
	assert.Equal(t, 2, sme.Expected)
	assert.Equal(t, 1, sme.Actual)
}
