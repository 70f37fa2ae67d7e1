package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/trip-eval-backend-go/internal/evalspec"
	"github.com/jengzang/trip-eval-backend-go/internal/middleware"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/phoneview"
	"github.com/jengzang/trip-eval-backend-go/internal/repository"
	"github.com/jengzang/trip-eval-backend-go/internal/service"
	"github.com/jengzang/trip-eval-backend-go/pkg/response"
)

// EvaluationHandler handles HTTP requests for evaluation tasks
type EvaluationHandler struct {
	service *service.EvaluationService
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(service *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// CreateTask creates a new evaluation task
// POST /api/v1/evaluations
func (h *EvaluationHandler) CreateTask(c *gin.Context) {
	var req service.CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	// Get user from context (set by auth middleware)
	createdBy := c.GetString(middleware.UserKey)

	task, err := h.service.CreateTask(c.Request.Context(), req, createdBy)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Accepted(c, task)
}

// GetTask retrieves a task by ID
// GET /api/v1/evaluations/:id
func (h *EvaluationHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.service.GetTask(id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, task)
}

// ListTasks retrieves evaluation tasks
// GET /api/v1/evaluations
func (h *EvaluationHandler) ListTasks(c *gin.Context) {
	var filter models.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	tasks, err := h.service.ListTasks(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"tasks":    tasks,
		"page":     filter.Page,
		"pageSize": filter.PageSize,
	})
}

// GetResult retrieves the evaluated phone view of a task
// GET /api/v1/evaluations/:id/result
func (h *EvaluationHandler) GetResult(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	view, err := h.service.GetResult(id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, view)
}

// GetReference returns reference trajectories as a GeoJSON FeatureCollection
// GET /api/v1/evaluations/:id/reference?os=android
func (h *EvaluationHandler) GetReference(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	os := c.DefaultQuery("os", phoneview.OSAndroid)
	if os != phoneview.OSAndroid && os != phoneview.OSIOS {
		response.BadRequest(c, "os must be android or ios")
		return
	}

	fc, err := h.service.GetReferenceFeatures(id, os)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, fc)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return id, true
}

// writeError maps service errors to response codes
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, evalspec.ErrSpecNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, evalspec.ErrInvalidSpec):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrTaskNotCompleted):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}
