package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/selivandex/news-sentiment/internal/ingestion"
	"github.com/selivandex/news-sentiment/internal/prediction"
	"github.com/selivandex/news-sentiment/pkg/logger"
	"github.com/selivandex/news-sentiment/pkg/models"
)

// Collector triggers one ingestion run
type Collector interface {
	Collect(ctx context.Context) ingestion.RunSummary
}

// Predictor triggers one prediction run
type Predictor interface {
	Run(ctx context.Context, model, systemPrompt string) prediction.Result
}

// ArticleReader reads the recent article window
type ArticleReader interface {
	RecentArticles(ctx context.Context, hours, limit int) ([]models.ArticlePreview, error)
}

// PredictionReader reads stored run output
type PredictionReader interface {
	RecentPredictionItems(ctx context.Context, limit int) ([]models.PredictionItem, error)
	RecentLLMQueries(ctx context.Context, limit int) ([]models.LLMQuery, error)
	RecentPredictions(ctx context.Context, limit int) ([]models.Prediction, error)
}

// LogReader reads the audit log
type LogReader interface {
	Recent(ctx context.Context, limit int) ([]models.LogEntry, error)
}

// Recorder receives audit lines
type Recorder interface {
	Record(ctx context.Context, source, text string)
}

// HealthChecker reports dependency health
type HealthChecker interface {
	Health() error
}

// Deps groups everything the handlers need
type Deps struct {
	Collector     Collector
	Predictor     Predictor
	Articles      ArticleReader
	Predictions   PredictionReader
	Logs          LogReader
	Recorder      Recorder
	DB            HealthChecker
	HasCredential func() bool
	AllowOrigins  []string
}

// Server exposes the trigger and read API over HTTP
type Server struct {
	server    *http.Server
	router    *gin.Engine
	deps      Deps
	ready     bool
	readyMu   sync.RWMutex
	collectMu sync.Mutex
	predictMu sync.Mutex
	startTime time.Time
}

// NewServer creates new HTTP server
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		deps:      deps,
		startTime: time.Now(),
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	if len(deps.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: deps.AllowOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	// Probes
	router.GET("/health", s.handleHealth)
	router.GET("/ready", s.handleReadiness)

	// Triggers
	router.POST("/collect", s.handleCollect)
	router.POST("/predict", s.handlePredict)

	// Reads
	router.GET("/articles", s.handleArticles)
	router.GET("/predictions", s.handlePredictionItems)
	router.GET("/forecasts", s.handlePredictions)
	router.GET("/llm", s.handleLLMQueries)
	router.GET("/logs", s.handleLogs)

	s.router = router
	s.server = &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		// Prediction runs block for up to the LLM timeout
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logger.Info("http server starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping http server...")
	return s.server.Shutdown(ctx)
}

// SetReady marks the service as ready
func (s *Server) SetReady(ready bool) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	s.ready = ready

	if ready {
		logger.Info("service marked as ready")
	} else {
		logger.Warn("service marked as not ready")
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
