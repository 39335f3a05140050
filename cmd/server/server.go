package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drepwatch/drepscore/internal/cache"
	"github.com/drepwatch/drepscore/internal/config"
	apperrors "github.com/drepwatch/drepscore/internal/errors"
	"github.com/drepwatch/drepscore/internal/monitoring"
	"github.com/drepwatch/drepscore/internal/ratelimit"
	"github.com/drepwatch/drepscore/internal/scoring"
	"github.com/drepwatch/drepscore/internal/types"
)

// server wires the scoring engine to its HTTP surface.
type server struct {
	cfg       *config.Config
	engine    *scoring.Engine
	cache     *cache.Cache
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	limiter   *ratelimit.RateLimiter
	gatherer  prometheus.Gatherer
	startedAt time.Time
}

func newServer(
	cfg *config.Config,
	engine *scoring.Engine,
	responseCache *cache.Cache,
	metrics *monitoring.Metrics,
	logger *monitoring.Logger,
	limiter *ratelimit.RateLimiter,
	gatherer prometheus.Gatherer,
) *server {
	return &server{
		cfg:       cfg,
		engine:    engine,
		cache:     responseCache,
		metrics:   metrics,
		logger:    logger,
		limiter:   limiter,
		gatherer:  gatherer,
		startedAt: time.Now(),
	}
}

// scoreResponse is one DRep's score plus the optional delta against the
// caller-supplied previous snapshot.
type scoreResponse struct {
	scoring.Result
	Delta *scoring.Delta `json:"delta,omitempty"`
}

type batchEntry struct {
	DRepID string          `json:"drep_id"`
	Result *scoreResponse  `json:"result,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

type batchResponse struct {
	CurrentEpoch uint64       `json:"current_epoch"`
	Results      []batchEntry `json:"results"`
}

func (s *server) router() *gin.Engine {
	router := gin.New()

	router.Use(monitoring.RequestIDMiddleware())
	router.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	router.Use(apperrors.ErrorHandler())
	router.Use(apperrors.RecoveryHandler())
	router.Use(cors.New(s.corsConfig()))

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	if s.limiter != nil {
		v1.Use(s.limiter.Middleware(s.metrics))
	}
	v1.POST("/score", s.handleScore)
	v1.POST("/score/batch", s.handleBatch)

	return router
}

func (s *server) corsConfig() cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", monitoring.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{monitoring.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"}

	allowAll := false
	for _, origin := range s.cfg.CORSOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.CORSOrigins
	}
	return corsCfg
}

// handleScore scores one DRep. Scoring is deterministic, so byte-identical
// requests within the cache TTL are served the byte-identical response.
func (s *server) handleScore(c *gin.Context) {
	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWith(c, apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	// Re-marshal the bound struct so field order and whitespace in the raw
	// body never fragment the cache.
	canonical, err := json.Marshal(req)
	if err != nil {
		s.abortWith(c, apperrors.NewInternalError("Failed to canonicalize request", err))
		return
	}
	key := cache.Key(canonical)

	if body, ok := s.cache.Get(key); ok {
		s.metrics.CacheHits.Inc()
		s.logger.CacheLogger("get", key, true, s.cache.Len())
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}
	s.metrics.CacheMisses.Inc()

	start := time.Now()
	resp, err := s.score(req)
	if err != nil {
		s.abortWith(c, apperrors.ToAppError(err))
		return
	}
	duration := time.Since(start)
	s.metrics.ScoringDuration.Observe(duration.Seconds())
	s.metrics.ScoresComputed.Inc()

	body, err := json.Marshal(resp)
	if err != nil {
		s.abortWith(c, apperrors.NewInternalError("Failed to encode response", err))
		return
	}
	s.cache.Set(key, body)
	s.logger.ScoreLogger(req.DRepID, resp.Score, len(req.Votes), len(resp.Recommendations), duration, false)

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// handleBatch scores many DReps with bounded parallelism, preserving
// request order. Entries fail independently: a contract violation in one
// snapshot never voids its neighbors.
func (s *server) handleBatch(c *gin.Context) {
	var req types.BatchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWith(c, apperrors.NewValidationError("Invalid request body", err.Error()))
		return
	}
	if len(req.DReps) == 0 {
		s.abortWith(c, apperrors.NewValidationError("Batch contains no DReps"))
		return
	}
	if len(req.DReps) > s.cfg.MaxBatchSize {
		s.abortWith(c, apperrors.NewValidationError(
			"Batch too large",
			map[string]int{"max_batch_size": s.cfg.MaxBatchSize, "got": len(req.DReps)},
		))
		return
	}

	workers := s.cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()
	results := make([]batchEntry, len(req.DReps))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range req.DReps {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			entry := req.DReps[i]
			if entry.CurrentEpoch == 0 {
				entry.CurrentEpoch = req.CurrentEpoch
			}

			results[i] = batchEntry{DRepID: entry.DRepID}
			resp, err := s.score(entry)
			if err != nil {
				appErr := apperrors.ToAppError(err)
				encoded, encErr := json.Marshal(appErr)
				if encErr != nil {
					encoded = []byte(`{"msg":"scoring failed"}`)
				}
				results[i].Error = encoded
				return
			}
			results[i].Result = resp
		}(i)
	}
	wg.Wait()

	s.metrics.ScoresComputed.Add(float64(len(req.DReps)))
	s.logger.BatchLogger(len(req.DReps), workers, time.Since(start))

	c.JSON(http.StatusOK, batchResponse{
		CurrentEpoch: req.CurrentEpoch,
		Results:      results,
	})
}

func (s *server) handleHealth(c *gin.Context) {
	health := gin.H{
		"status":          "ok",
		"uptime":          time.Since(s.startedAt).String(),
		"weights_version": s.engine.Weights().Version,
		"cache_items":     s.cache.Len(),
	}
	if s.limiter != nil {
		health["rate_limiter"] = s.limiter.GetStats()
	}
	c.JSON(http.StatusOK, health)
}

// score runs the engine on one request and attaches the delta when the
// caller supplied a previous snapshot.
func (s *server) score(req types.ScoreRequest) (*scoreResponse, error) {
	result, err := s.engine.Score(scoring.Input{
		DRepID:            req.DRepID,
		Votes:             req.Votes,
		EligibleProposals: req.EligibleProposals,
		EligibleEpochs:    req.EligibleEpochs,
		Profile:           req.Profile,
		CurrentEpoch:      req.CurrentEpoch,
	})
	if err != nil {
		return nil, err
	}

	resp := &scoreResponse{Result: result}
	if req.Previous != nil {
		delta := result.DeltaFrom(*req.Previous)
		resp.Delta = &delta
	}
	return resp, nil
}

func (s *server) abortWith(c *gin.Context, appErr *apperrors.AppError) {
	appErr.RequestID = c.GetHeader(monitoring.RequestIDHeader)
	apperrors.LogError(c, appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
}
