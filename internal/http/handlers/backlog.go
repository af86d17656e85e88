package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/http/response"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/services"
)

type BacklogHandler struct {
	log       *logger.Logger
	backlog   services.BacklogService
	revisions services.RevisionService
}

func NewBacklogHandler(log *logger.Logger, backlog services.BacklogService, revisions services.RevisionService) *BacklogHandler {
	return &BacklogHandler{
		log:       log.With("handler", "BacklogHandler"),
		backlog:   backlog,
		revisions: revisions,
	}
}

func (h *BacklogHandler) View(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.backlog.View(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "view backlog", err)
		return
	}
	response.RespondOK(c, v)
}

func (h *BacklogHandler) Refresh(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.backlog.Refresh(c.Request.Context(), id, &uid)
	if err != nil {
		fail(c, h.log, "refresh backlog", err)
		return
	}
	response.RespondOK(c, gin.H{"backlog": b})
}

func (h *BacklogHandler) ListMine(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := h.backlog.ListByUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, h.log, "list backlogs", err)
		return
	}
	response.RespondOK(c, gin.H{"backlogs": rows})
}

// Revisions lists the history of any artifact kind, oldest first.
func (h *BacklogHandler) Revisions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kind := types.ArtifactKind(c.Param("kind"))
	rows, err := h.revisions.ListForArtifact(c.Request.Context(), kind, id)
	if err != nil {
		fail(c, h.log, "list revisions", err)
		return
	}
	response.RespondOK(c, gin.H{"revisions": rows})
}
