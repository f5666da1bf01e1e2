package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campstack/evalboard-backend/internal/platform/apierr"
)

// Envelope is the uniform response shape: success carries data,
// failure carries a message plus a machine-readable error code.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func OKWithMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Fail maps an error onto the envelope. apierr values choose their own
// status and code; anything else is a 500.
func Fail(c *gin.Context, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(apierr.StatusOf(err), Envelope{
		Success: false,
		Message: msg,
		Error:   apierr.CodeOf(err),
	})
}

func FailStatus(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, Envelope{Success: false, Message: msg, Error: code})
}
