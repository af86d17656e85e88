package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/productforge-backend/internal/http/response"
	"github.com/yungbote/productforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id := ctxutil.UserID(c.Request.Context())
	if id == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return uuid.Nil, false
	}
	return *id, true
}

// pathID parses a uuid path parameter or writes a 400.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into dst. An empty body is accepted when optional.
func bindJSON(c *gin.Context, dst any, optional bool) bool {
	if optional && c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// fail writes the error envelope and logs server-side failures.
func fail(c *gin.Context, log *logger.Logger, op string, err error) {
	status := response.RespondServiceError(c, err)
	kv := append([]interface{}{"status", status, "error", err}, ctxutil.TraceFields(c.Request.Context())...)
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", append(kv, "route", c.FullPath())...)
		return
	}
	log.Debug(op+" rejected", kv...)
}

type generateRequest struct {
	Instruction string `json:"instruction"`
}
