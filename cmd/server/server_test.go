package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drepwatch/drepscore/internal/cache"
	"github.com/drepwatch/drepscore/internal/config"
	"github.com/drepwatch/drepscore/internal/monitoring"
	"github.com/drepwatch/drepscore/internal/scoring"
	"github.com/drepwatch/drepscore/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()

	cfg := config.New()
	if mutate != nil {
		mutate(cfg)
	}

	engine, err := scoring.NewEngine(scoring.DefaultWeights())
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	logger := monitoring.NewLogger("error")

	responseCache := cache.New(cfg.CacheTTL)
	t.Cleanup(responseCache.Close)

	srv := newServer(cfg, engine, responseCache, metrics, logger, nil, registry)
	return srv.router()
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScoreEndpointEmptyInput(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := postJSON(t, router, "/v1/score", types.ScoreRequest{
		DRepID:       "drep1newjoiner",
		CurrentEpoch: 500,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "drep1newjoiner", resp.DRepID)
	assert.Equal(t, 0, resp.Score)
	assert.Equal(t, "v1", resp.Version)
	assert.Zero(t, resp.Pillars.Participation)
	assert.Zero(t, resp.Pillars.Rationale)
	assert.Zero(t, resp.Pillars.Reliability)
	assert.Zero(t, resp.Pillars.Profile)
	assert.Nil(t, resp.Delta)
}

func TestScoreEndpointContractViolation(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := postJSON(t, router, "/v1/score", types.ScoreRequest{
		DRepID:            "drep1broken",
		EligibleProposals: -3,
		CurrentEpoch:      500,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "contract", body["category"])
}

func TestScoreEndpointVoteNewerThanCurrentEpoch(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := postJSON(t, router, "/v1/score", types.ScoreRequest{
		DRepID:            "drep1timetravel",
		EligibleProposals: 1,
		CurrentEpoch:      500,
		Votes: []types.VoteRecord{
			{TxHash: "aa", Choice: types.VoteYes, Epoch: 501, ProposalType: types.ProposalParameterChange},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "contract", body["category"])
}

func TestScoreEndpointRejectsMissingFields(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := postJSON(t, router, "/v1/score", map[string]any{"votes": []any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body["category"])
}

func TestScoreEndpointServesCachedBytes(t *testing.T) {
	router := newTestRouter(t, nil)

	req := types.ScoreRequest{
		DRepID:            "drep1cached",
		EligibleProposals: 4,
		CurrentEpoch:      500,
		Votes: []types.VoteRecord{
			{TxHash: "aa", Choice: types.VoteYes, Epoch: 498, ProposalType: types.ProposalInfoAction},
			{TxHash: "bb", Choice: types.VoteNo, Epoch: 499, ProposalType: types.ProposalParameterChange},
		},
	}

	first := postJSON(t, router, "/v1/score", req)
	second := postJSON(t, router, "/v1/score", req)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestScoreEndpointDelta(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := postJSON(t, router, "/v1/score", types.ScoreRequest{
		DRepID:       "drep1delta",
		CurrentEpoch: 500,
		Previous: &types.ScoreSnapshot{
			Score:         40,
			Participation: 50,
			Rationale:     30,
			Reliability:   45,
			Profile:       20,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Delta)

	// Empty input scores zero everywhere, so the delta is the negated
	// previous snapshot.
	assert.Equal(t, -40, resp.Delta.Score)
	assert.InDelta(t, -50, resp.Delta.Participation, 1e-9)
	assert.InDelta(t, -30, resp.Delta.Rationale, 1e-9)
	assert.InDelta(t, -45, resp.Delta.Reliability, 1e-9)
	assert.InDelta(t, -20, resp.Delta.Profile, 1e-9)
}

func TestBatchEndpointPreservesOrderAndIsolatesFailures(t *testing.T) {
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.BatchWorkers = 3
	})

	rec := postJSON(t, router, "/v1/score/batch", types.BatchScoreRequest{
		CurrentEpoch: 500,
		DReps: []types.ScoreRequest{
			{DRepID: "drep1first"},
			{DRepID: "drep1broken", EligibleProposals: -1},
			{DRepID: "drep1third", EligibleProposals: 2, Votes: []types.VoteRecord{
				{TxHash: "aa", Choice: types.VoteYes, Epoch: 499, ProposalType: types.ProposalParameterChange, Rationale: "A considered position on the parameter update, covering the security and cost impact in detail."},
			}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "drep1first", resp.Results[0].DRepID)
	assert.Equal(t, "drep1broken", resp.Results[1].DRepID)
	assert.Equal(t, "drep1third", resp.Results[2].DRepID)

	require.NotNil(t, resp.Results[0].Result)
	assert.Nil(t, resp.Results[0].Error)

	assert.Nil(t, resp.Results[1].Result)
	assert.NotNil(t, resp.Results[1].Error)

	require.NotNil(t, resp.Results[2].Result)
	assert.Greater(t, resp.Results[2].Result.Score, 0)
}

func TestBatchEndpointInheritsCurrentEpoch(t *testing.T) {
	router := newTestRouter(t, nil)

	// The entry's vote sits at epoch 499; scoring succeeds only if the
	// batch-level current epoch is applied to the entry.
	rec := postJSON(t, router, "/v1/score/batch", types.BatchScoreRequest{
		CurrentEpoch: 500,
		DReps: []types.ScoreRequest{
			{DRepID: "drep1inherit", EligibleProposals: 1, Votes: []types.VoteRecord{
				{TxHash: "aa", Choice: types.VoteNo, Epoch: 499, ProposalType: types.ProposalInfoAction},
			}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	require.NotNil(t, resp.Results[0].Result)
	assert.Nil(t, resp.Results[0].Error)
}

func TestBatchEndpointRejectsOversizedBatch(t *testing.T) {
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.MaxBatchSize = 2
	})

	rec := postJSON(t, router, "/v1/score/batch", types.BatchScoreRequest{
		CurrentEpoch: 500,
		DReps: []types.ScoreRequest{
			{DRepID: "a"}, {DRepID: "b"}, {DRepID: "c"},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body["category"])
}

func TestBatchEndpointRejectsEmptyBatch(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := postJSON(t, router, "/v1/score/batch", map[string]any{
		"current_epoch": 500,
		"dreps":         []any{},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "v1", body["weights_version"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	// Generate some traffic so the collectors have samples.
	postJSON(t, router, "/v1/score", types.ScoreRequest{DRepID: "drep1metrics", CurrentEpoch: 500})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "drepscore_scores_computed_total")
}

func TestRequestIDPropagation(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(monitoring.RequestIDHeader, "trace-me-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "trace-me-123", rec.Header().Get(monitoring.RequestIDHeader))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get(monitoring.RequestIDHeader))
}

func TestCacheExpiryRecomputes(t *testing.T) {
	router := newTestRouter(t, func(cfg *config.Config) {
		cfg.CacheTTL = time.Millisecond
	})

	req := types.ScoreRequest{DRepID: "drep1ttl", CurrentEpoch: 500}
	first := postJSON(t, router, "/v1/score", req)
	require.Equal(t, http.StatusOK, first.Code)

	time.Sleep(5 * time.Millisecond)

	second := postJSON(t, router, "/v1/score", req)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}
