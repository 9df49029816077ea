package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orrn/printbridge/internal/api/handlers"
	"github.com/orrn/printbridge/internal/api/middleware"
	"github.com/orrn/printbridge/internal/config"
	"github.com/orrn/printbridge/internal/core"
	"github.com/orrn/printbridge/internal/web"
)

// SetupRouter wires the HTTP surface around an already opened store.
func SetupRouter(cfg *config.Config, store core.JobStore, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID(logger))
	router.Use(middleware.MaxBodyBytes(cfg.Server.MaxBodyBytes))
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", web.Static())

	creator := core.NewJobCreator(store, logger)
	viewer := core.NewJobViewer(store, logger)

	jobHandler := handlers.NewJobHandler(creator, viewer, cfg.Server.PublicBaseURL, logger)
	api := router.Group("/api")
	jobHandler.RegisterRoutes(api)

	webUI := handlers.NewWebUIHandler(viewer, web.NewBridgeSettings(cfg.Bridge), cfg.ServiceName, cfg.Server.PublicBaseURL, logger)
	handlers.RegisterWebUIRoutes(router, webUI)

	return router, nil
}
