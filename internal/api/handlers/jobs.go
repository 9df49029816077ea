package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/orrn/printbridge/internal/api/middleware"
	"github.com/orrn/printbridge/internal/bridge"
	"github.com/orrn/printbridge/internal/core"
)

type CreateJobRequest struct {
	Data []core.Directive `json:"data" binding:"required"`
}

type CreateJobResponse struct {
	JobID   string `json:"job_id"`
	ViewURL string `json:"view_url"`
}

type JobResponse struct {
	JobID     string           `json:"job_id"`
	CreatedAt time.Time        `json:"created_at"`
	Data      []core.Directive `json:"data"`
	Bridge    bridge.Message   `json:"bridge"`
}

type JobHandler struct {
	creator       *core.JobCreator
	viewer        *core.JobViewer
	publicBaseURL string
	logger        *zap.Logger
}

func NewJobHandler(creator *core.JobCreator, viewer *core.JobViewer, publicBaseURL string, logger *zap.Logger) *JobHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobHandler{
		creator:       creator,
		viewer:        viewer,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := bindStrictJSON(c, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "Request body too large."})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid print job: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	created, err := h.creator.Create(ctx, req.Data, RequestBaseURL(c.Request, h.publicBaseURL))
	if err != nil {
		if core.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		h.logger.Error("create print job failed",
			zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
			zap.Error(err))
		cause := err
		if inner := errors.Unwrap(err); inner != nil {
			cause = inner
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create print job: " + cause.Error()})
		return
	}

	c.JSON(http.StatusOK, CreateJobResponse{
		JobID:   created.ID,
		ViewURL: created.ViewURL,
	})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.viewer.View(ctx, c.Param("id"))
	if err != nil {
		h.logger.Error("load print job failed",
			zap.String("correlation_id", middleware.GetCorrelationID(ctx)),
			zap.String("job_id", c.Param("id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to load print job."})
		return
	}

	if !view.Found {
		c.JSON(http.StatusNotFound, gin.H{"detail": view.ErrorMessage})
		return
	}

	c.JSON(http.StatusOK, JobResponse{
		JobID:     view.JobID,
		CreatedAt: view.CreatedAt,
		Data:      view.Data,
		Bridge:    view.Message,
	})
}

// bindStrictJSON is ShouldBindJSON without tolerance for trailing data after
// the first JSON value.
func bindStrictJSON(c *gin.Context, obj any) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/print-jobs", h.CreateJob)
	r.GET("/print-jobs/:id", h.GetJob)
}
