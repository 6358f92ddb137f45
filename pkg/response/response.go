package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the standard API response envelope. The front-end form client
// consumes success/message directly; data carries operation results.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK sends a 200 JSON response with message and data.
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Message: message, Data: data})
}

// BadRequest sends 400 with an error message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Message: message})
}

// NotFound sends 404 with an error message.
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Message: message})
}

// Internal sends 500 with an error message.
func Internal(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Message: message})
}
