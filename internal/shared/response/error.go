package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	sharederrors "github.com/uniedit/apiclient/internal/shared/errors"
)

// ErrorResponse represents a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error sends an error response with the given status code.
func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// BadRequest sends a 400 Bad Request response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "unauthorized"
	}
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// InternalError sends a 500 Internal Server Error response.
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}

// FromError sends the response matching err's status and code.
// Messages of server side errors are not exposed.
func FromError(c *gin.Context, err error) {
	status := sharederrors.GetStatusCode(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		InternalError(c)
		return
	}
	Error(c, status, sharederrors.GetCode(err), err.Error())
}

// ErrorMapping maps domain errors to HTTP status codes.
type ErrorMapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// HandleError handles an error using the provided mappings and falls back to FromError.
func HandleError(c *gin.Context, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			msg := m.Message
			if msg == "" {
				msg = m.Err.Error()
			}
			Error(c, m.Status, m.Code, msg)
			return
		}
	}
	FromError(c, err)
}
