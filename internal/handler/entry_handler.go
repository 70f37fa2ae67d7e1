package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/models"
	"github.com/jengzang/trip-eval-backend-go/internal/service"
	"github.com/jengzang/trip-eval-backend-go/pkg/response"
)

// EntryHandler serves the phone datastore
type EntryHandler struct {
	service *service.EntryService
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(service *service.EntryService) *EntryHandler {
	return &EntryHandler{service: service}
}

// Upload stores entries for one user
// POST /api/v1/datastreams/entries
func (h *EntryHandler) Upload(c *gin.Context) {
	var req models.EntryUpload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	n, err := h.service.Upload(req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"inserted": n})
}

// FindEntries answers a find_entries query in the datastore's own format
// POST /api/v1/datastreams/find_entries/timestamp
func (h *EntryHandler) FindEntries(c *gin.Context) {
	var q models.EntryQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	entries, err := h.service.Find(q)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}

	c.JSON(http.StatusOK, datastore.FindEntriesResponse{PhoneData: entries})
}

// Counts returns the number of stored entries per key for a user
// GET /api/v1/datastreams/users/:user/counts
func (h *EntryHandler) Counts(c *gin.Context) {
	counts, err := h.service.Counts(c.Param("user"))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, counts)
}
