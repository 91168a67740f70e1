// Package ui exposes the datalens REST and streaming API over Gin.
package ui

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"datalens/app/analysis"
	"datalens/app/assistant"
	"datalens/app/datasets"
	"datalens/app/training"
	"datalens/internal"
	"datalens/internal/config"
	"datalens/ports"
)

// Deps bundles everything the HTTP layer serves.
type Deps struct {
	Datasets  *datasets.Service
	Analysis  *analysis.Service
	Training  *training.Service
	Assistant *assistant.Service
	Models    ports.ModelRepository
	Settings  ports.SettingsRepository
	Logger    *internal.Logger
}

// Server represents the web server for the datalens API
type Server struct {
	router  *gin.Engine
	logger  *internal.Logger
	started time.Time

	datasets  *datasets.Service
	analysis  *analysis.Service
	training  *training.Service
	assistant *assistant.Service
	models    ports.ModelRepository
	settings  ports.SettingsRepository

	maxUploadBytes int64
}

// NewServer creates a new web server instance with all routes registered
func NewServer(cfg *config.Config, deps Deps) *Server {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	s := &Server{
		router:         gin.Default(),
		logger:         deps.Logger.WithComponent("HTTP"),
		started:        time.Now(),
		datasets:       deps.Datasets,
		analysis:       deps.Analysis,
		training:       deps.Training,
		assistant:      deps.Assistant,
		models:         deps.Models,
		settings:       deps.Settings,
		maxUploadBytes: cfg.Uploads.MaxSizeMB * 1024 * 1024,
	}

	s.router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders: []string{"Content-Type"},
	}))

	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.handleHealth)

		api.POST("/datasets", s.handleUploadDataset)
		api.GET("/datasets", s.handleListDatasets)
		api.GET("/datasets/:id", s.handleGetDataset)
		api.DELETE("/datasets/:id", s.handleDeleteDataset)
		api.GET("/datasets/:id/preview", s.handlePreviewDataset)
		api.GET("/datasets/:id/eda", s.handleEDA)
		api.GET("/datasets/:id/columns/:name", s.handleColumnInfo)
		api.GET("/datasets/:id/forecast", s.handleForecast)

		api.GET("/settings", s.handleGetSettings)
		api.PUT("/settings", s.handleUpdateSettings)

		api.POST("/conversations", s.handleStartConversation)
		api.GET("/conversations", s.handleListConversations)
		api.GET("/conversations/:id", s.handleGetConversation)
		api.DELETE("/conversations/:id", s.handleDeleteConversation)
		api.GET("/conversations/:id/messages", s.handleListMessages)
		api.POST("/conversations/:id/messages", s.handleSendMessage)
		api.GET("/conversations/:id/stream", s.handleStreamMessage)
		api.GET("/conversations/:id/transcript", s.handleTranscript)

		api.POST("/models/train", s.handleTrainModel)
		api.GET("/models", s.handleListModels)
		api.GET("/models/:id", s.handleGetModel)
		api.DELETE("/models/:id", s.handleDeleteModel)
		api.POST("/models/:id/predict", s.handlePredict)
		api.POST("/models/compare", s.handleCompareModels)
		api.GET("/models/:id/compare/:other", s.handleComparePair)
		api.GET("/models/:id/history", s.handleModelHistory)
		api.POST("/models/:id/versions", s.handleCreateVersion)
	}
}

// Router exposes the underlying engine so tests can drive it directly.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting datalens API on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	dsList, err := s.datasets.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	modelList, err := s.models.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"datasets":       len(dsList),
		"models":         len(modelList),
	})
}
