package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every cart API response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func RespondError(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.JSON(status, Envelope{StatusCode: status, Message: message})
}

func AbortError(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, Envelope{StatusCode: status, Message: message})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, Envelope{StatusCode: http.StatusOK, Message: "OK", Data: payload})
}
