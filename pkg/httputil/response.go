package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meditrack/authorization-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusFor maps an error kind to its HTTP status code. The mapping is
// deterministic: the same kind always yields the same code.
func StatusFor(kind errors.Kind) int {
	switch kind {
	case errors.KindValidation, errors.KindBusinessRule:
		return http.StatusBadRequest
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindDuplicate, errors.KindConflict:
		return http.StatusConflict
	case errors.KindUnauthorized:
		return http.StatusForbidden
	case errors.KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, err error) {
	kind := errors.KindOf(err)
	status := StatusFor(kind)

	message := err.Error()
	if kind == errors.KindInternal {
		message = "internal server error"
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Kind:    kind.String(),
			Message: message,
		},
	})
}
