package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON API reply
type Response struct {
	Code    int         `json:"code"` // 0 on success, the HTTP status otherwise
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Code: 0, Message: message, Data: data})
}

// Success sends a 200 response carrying data
func Success(c *gin.Context, data interface{}) {
	ok(c, http.StatusOK, "success", data)
}

// Accepted sends a 202 response for work that continues in the background,
// such as a queued evaluation
func Accepted(c *gin.Context, data interface{}) {
	ok(c, http.StatusAccepted, "accepted", data)
}

// Error sends an error response and stops the handler chain
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Message: message})
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict sends a 409 response, used for results of unfinished tasks
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
