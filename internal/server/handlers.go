package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/internal/prediction"
	"github.com/selivandex/news-sentiment/pkg/logger"
)

const auditSource = "web"

// HealthStatus represents process health
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime"`
}

// ReadinessStatus represents system readiness
type ReadinessStatus struct {
	Ready     bool              `json:"ready"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// PredictRequest carries optional overrides for a prediction run
type PredictRequest struct {
	Model        string `form:"model" json:"model"`
	SystemPrompt string `form:"system_prompt" json:"system_prompt"`
}

// PredictResponse is returned after a prediction run
type PredictResponse struct {
	RunID   string `json:"run_id"`
	Model   string `json:"model"`
	Saved   int    `json:"saved"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// handleHealth handles liveness probe - /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleReadiness handles readiness probe - /ready
func (s *Server) handleReadiness(c *gin.Context) {
	s.readyMu.RLock()
	ready := s.ready
	s.readyMu.RUnlock()

	checks := make(map[string]string)
	healthy := true

	if s.deps.DB != nil {
		if err := s.deps.DB.Health(); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "healthy"
		}
	}

	status := ReadinessStatus{
		Ready:     ready && healthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func (s *Server) handleCollect(c *gin.Context) {
	// A run finishes even if the client goes away
	ctx := context.WithoutCancel(c.Request.Context())

	s.collectMu.Lock()
	defer s.collectMu.Unlock()

	s.record(ctx, "Starting RSS collection")
	summary := s.deps.Collector.Collect(ctx)
	s.record(ctx, fmt.Sprintf("RSS collection finished: %d new rows", summary.Total))

	c.JSON(http.StatusOK, summary)
}

func (s *Server) handlePredict(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())

	var req PredictRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	s.record(ctx, fmt.Sprintf("Starting predictor (model=%s, prompt_length=%d)", req.Model, len(req.SystemPrompt)))

	if s.deps.HasCredential == nil || !s.deps.HasCredential() {
		s.record(ctx, "ERROR: OPENROUTER_API_KEY not set")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_api_key"})
		return
	}

	s.predictMu.Lock()
	defer s.predictMu.Unlock()

	res := s.deps.Predictor.Run(ctx, req.Model, req.SystemPrompt)
	s.record(ctx, fmt.Sprintf("Predictor finished: saved %d items", res.ItemsSaved))

	resp := PredictResponse{
		RunID:   res.RunID,
		Model:   res.Model,
		Saved:   res.ItemsSaved,
		Outcome: string(res.Outcome),
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}

	code := http.StatusOK
	if res.Outcome == prediction.OutcomeTransportError {
		code = http.StatusBadGateway
	}
	c.JSON(code, resp)
}

func (s *Server) handleArticles(c *gin.Context) {
	hours := getQueryInt(c, "hours", 24, 24*30)

	rows, err := s.deps.Articles.RecentArticles(c.Request.Context(), hours, 200)
	if err != nil {
		databaseError(c, "error fetching articles", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hours": hours, "rows": rows})
}

func (s *Server) handlePredictionItems(c *gin.Context) {
	rows, err := s.deps.Predictions.RecentPredictionItems(c.Request.Context(), getQueryInt(c, "limit", 200, 1000))
	if err != nil {
		databaseError(c, "error fetching prediction items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (s *Server) handlePredictions(c *gin.Context) {
	rows, err := s.deps.Predictions.RecentPredictions(c.Request.Context(), getQueryInt(c, "limit", 20, 200))
	if err != nil {
		databaseError(c, "error fetching predictions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (s *Server) handleLLMQueries(c *gin.Context) {
	rows, err := s.deps.Predictions.RecentLLMQueries(c.Request.Context(), getQueryInt(c, "limit", 50, 500))
	if err != nil {
		databaseError(c, "error fetching llm queries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (s *Server) handleLogs(c *gin.Context) {
	rows, err := s.deps.Logs.Recent(c.Request.Context(), getQueryInt(c, "limit", 100, 1000))
	if err != nil {
		databaseError(c, "error fetching logs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (s *Server) record(ctx context.Context, text string) {
	if s.deps.Recorder == nil {
		logger.Info(text, zap.String("source", auditSource))
		return
	}
	s.deps.Recorder.Record(ctx, auditSource, text)
}

func databaseError(c *gin.Context, msg string, err error) {
	logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

// getQueryInt reads a positive integer parameter, falling back to def when
// absent or invalid and clamping to ceiling.
func getQueryInt(c *gin.Context, key string, def, ceiling int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		logger.Warn("invalid query parameter, using default",
			zap.String("param", key),
			zap.String("value", raw),
			zap.Int("default", def),
		)
		return def
	}
	if v > ceiling {
		return ceiling
	}
	return v
}
