package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/http/response"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/services"
)

type RequirementHandler struct {
	log          *logger.Logger
	requirements services.RequirementService
}

func NewRequirementHandler(log *logger.Logger, requirements services.RequirementService) *RequirementHandler {
	return &RequirementHandler{log: log.With("handler", "RequirementHandler"), requirements: requirements}
}

func (h *RequirementHandler) ListMine(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := h.requirements.ListByUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, h.log, "list requirements", err)
		return
	}
	response.RespondOK(c, gin.H{"requirements": rows})
}

func (h *RequirementHandler) ListByStory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.requirements.ListByStory(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "list story requirements", err)
		return
	}
	response.RespondOK(c, gin.H{"requirements": rows})
}

func (h *RequirementHandler) Create(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Description string         `json:"description"`
		Priority    types.Priority `json:"priority"`
	}
	if !bindJSON(c, &req, false) {
		return
	}
	r, err := h.requirements.Create(c.Request.Context(), &uid, services.RequirementInput{
		UserStoryID: storyID,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		fail(c, h.log, "create requirement", err)
		return
	}
	response.RespondCreated(c, gin.H{"requirement": r})
}

func (h *RequirementHandler) Generate(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req generateRequest
	if !bindJSON(c, &req, true) {
		return
	}
	rows, err := h.requirements.GenerateForStory(c.Request.Context(), &uid, storyID, req.Instruction)
	if err != nil {
		fail(c, h.log, "generate requirements", err)
		return
	}
	response.RespondCreated(c, gin.H{"requirements": rows, "count": len(rows)})
}

func (h *RequirementHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	r, err := h.requirements.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "get requirement", err)
		return
	}
	response.RespondOK(c, gin.H{"requirement": r})
}

func (h *RequirementHandler) Update(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.RequirementPatch
	if !bindJSON(c, &req, false) {
		return
	}
	r, err := h.requirements.Update(c.Request.Context(), &uid, id, req)
	if err != nil {
		fail(c, h.log, "update requirement", err)
		return
	}
	response.RespondOK(c, gin.H{"requirement": r})
}

func (h *RequirementHandler) Delete(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.requirements.Delete(c.Request.Context(), &uid, id); err != nil {
		fail(c, h.log, "delete requirement", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
