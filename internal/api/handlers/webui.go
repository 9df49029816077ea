package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orrn/printbridge/internal/api/middleware"
	"github.com/orrn/printbridge/internal/core"
	"github.com/orrn/printbridge/internal/web"
)

type LandingData struct {
	Title    string
	BaseURL  string
	AgentURL string
}

type PrintPageData struct {
	Title string
	View  *core.JobView
	Job   web.PageJob
}

type ErrorPageData struct {
	Title       string
	Message     string
	RequestedID string
}

type WebUIHandler struct {
	viewer        *core.JobViewer
	bridge        web.BridgeSettings
	serviceName   string
	publicBaseURL string
	logger        *zap.Logger
}

func NewWebUIHandler(viewer *core.JobViewer, bridgeSettings web.BridgeSettings, serviceName, publicBaseURL string, logger *zap.Logger) *WebUIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebUIHandler{
		viewer:        viewer,
		bridge:        bridgeSettings,
		serviceName:   serviceName,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

func (h *WebUIHandler) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, "index", LandingData{
		Title:    "Home",
		BaseURL:  RequestBaseURL(c.Request, h.publicBaseURL),
		AgentURL: h.bridge.AgentURL,
	})
}

// ViewJob renders the print page for ?id=. An unknown id renders the
// not-found page rather than failing the request.
func (h *WebUIHandler) ViewJob(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.HTML(http.StatusBadRequest, "error_page", ErrorPageData{
			Title:   "Missing job id",
			Message: "Open this page with the link returned when the print job was created, e.g. /view?id=<job id>.",
		})
		return
	}

	ctx := c.Request.Context()
	view, err := h.viewer.View(ctx, id)
	if err != nil {
		h.logger.Error("render print job failed",
			zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
			zap.String("job_id", id),
			zap.Error(err))
		c.HTML(http.StatusInternalServerError, "error_page", ErrorPageData{
			Title:       "Print job unavailable",
			Message:     "The print job could not be loaded right now. Please try again shortly.",
			RequestedID: id,
		})
		return
	}

	if !view.Found {
		c.HTML(http.StatusNotFound, "error_page", ErrorPageData{
			Title:       "Print job not found",
			Message:     view.ErrorMessage,
			RequestedID: view.RequestedID,
		})
		return
	}

	c.HTML(http.StatusOK, "print_page", PrintPageData{
		Title: "Print job " + view.JobID,
		View:  view,
		Job:   web.PageJob{Message: view.Message, Bridge: h.bridge},
	})
}

func (h *WebUIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.serviceName})
}

func RegisterWebUIRoutes(router *gin.Engine, handler *WebUIHandler) {
	router.GET("/", handler.Landing)
	router.GET("/view", handler.ViewJob)
	router.GET("/health", handler.Health)
}
