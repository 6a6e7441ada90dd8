package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medvision/internal/aiclient"
	"medvision/internal/config"
	"medvision/internal/handler"
	"medvision/internal/service"
	"medvision/internal/storage"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	store, err := storage.NewLocalStore(cfg.Storage.UploadDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload store: %w", err)
	}

	analyzer := aiclient.New(cfg.AI, log)
	studyService := service.NewStudyService(store, analyzer, cfg, log)

	h := handler.NewHandler(studyService, log)

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/upload", h.UploadImages)
		api.POST("/analyze", h.AnalyzeImages)
		api.POST("/report", h.GenerateReport)
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
			Handler: router,
			// Batch runs block on the upstream AI endpoint; the write
			// timeout is the only overall ceiling applied to a run.
			ReadTimeout:    5 * time.Minute,
			WriteTimeout:   15 * time.Minute,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port))

	return server, nil
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
