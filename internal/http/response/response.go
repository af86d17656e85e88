package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productforge-backend/internal/platform/apierr"
	domainerrs "github.com/yungbote/productforge-backend/internal/pkg/errors"
)

const internalMessage = "internal server error"

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps a service error onto the envelope and returns the
// status it chose. Anything that is not a known client error becomes a 500
// with a fixed message.
func RespondServiceError(c *gin.Context, err error) int {
	status, code := Classify(err)
	if status >= http.StatusInternalServerError {
		c.JSON(status, ErrorEnvelope{Error: APIError{Message: internalMessage, Code: code}})
		return status
	}
	RespondError(c, status, code, err)
	return status
}

// Classify resolves the status and code for err.
func Classify(err error) (int, string) {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae) && ae.Status != 0:
		code := ae.Code
		if code == "" {
			code = http.StatusText(ae.Status)
		}
		return ae.Status, code
	case errors.Is(err, domainerrs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domainerrs.ErrInvalidArgument):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domainerrs.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domainerrs.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
