package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/http/response"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/services"
)

type StoryHandler struct {
	log     *logger.Logger
	stories services.UserStoryService
}

func NewStoryHandler(log *logger.Logger, stories services.UserStoryService) *StoryHandler {
	return &StoryHandler{log: log.With("handler", "StoryHandler"), stories: stories}
}

type storyRequest struct {
	Actor    string         `json:"actor"`
	Action   string         `json:"action"`
	Benefit  string         `json:"benefit"`
	Priority types.Priority `json:"priority"`
}

func (h *StoryHandler) ListMine(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := h.stories.ListByUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, h.log, "list stories", err)
		return
	}
	response.RespondOK(c, gin.H{"stories": rows})
}

func (h *StoryHandler) ListByEpic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.stories.ListByEpic(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "list epic stories", err)
		return
	}
	response.RespondOK(c, gin.H{"stories": rows})
}

func (h *StoryHandler) ListByProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.stories.ListByProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "list product stories", err)
		return
	}
	response.RespondOK(c, gin.H{"stories": rows})
}

func (h *StoryHandler) CreateForEpic(c *gin.Context) {
	h.create(c, func(id uuid.UUID, in *services.UserStoryInput) { in.EpicID = &id })
}

func (h *StoryHandler) CreateForProduct(c *gin.Context) {
	h.create(c, func(id uuid.UUID, in *services.UserStoryInput) { in.ProductID = id })
}

func (h *StoryHandler) create(c *gin.Context, parent func(uuid.UUID, *services.UserStoryInput)) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req storyRequest
	if !bindJSON(c, &req, false) {
		return
	}
	in := services.UserStoryInput{
		Actor:    req.Actor,
		Action:   req.Action,
		Benefit:  req.Benefit,
		Priority: req.Priority,
	}
	parent(id, &in)
	st, err := h.stories.Create(c.Request.Context(), &uid, in)
	if err != nil {
		fail(c, h.log, "create story", err)
		return
	}
	response.RespondCreated(c, gin.H{"story": st})
}

func (h *StoryHandler) GenerateForEpic(c *gin.Context) {
	h.generate(c, h.stories.GenerateForEpic)
}

func (h *StoryHandler) GenerateForProduct(c *gin.Context) {
	h.generate(c, h.stories.GenerateForProduct)
}

func (h *StoryHandler) generate(c *gin.Context, gen func(context.Context, *uuid.UUID, uuid.UUID, string) ([]*types.UserStory, error)) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req generateRequest
	if !bindJSON(c, &req, true) {
		return
	}
	rows, err := gen(c.Request.Context(), &uid, id, req.Instruction)
	if err != nil {
		fail(c, h.log, "generate stories", err)
		return
	}
	response.RespondCreated(c, gin.H{"stories": rows, "count": len(rows)})
}

func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	st, err := h.stories.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "get story", err)
		return
	}
	response.RespondOK(c, gin.H{"story": st})
}

func (h *StoryHandler) Update(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UserStoryPatch
	if !bindJSON(c, &req, false) {
		return
	}
	st, err := h.stories.Update(c.Request.Context(), &uid, id, req)
	if err != nil {
		fail(c, h.log, "update story", err)
		return
	}
	response.RespondOK(c, gin.H{"story": st})
}

func (h *StoryHandler) Delete(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.stories.Delete(c.Request.Context(), &uid, id); err != nil {
		fail(c, h.log, "delete story", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *StoryHandler) RequirementCount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.stories.RequirementCount(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "count requirements", err)
		return
	}
	response.RespondOK(c, gin.H{"story_id": id, "count": n})
}

func (h *StoryHandler) SuggestPriority(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sug, err := h.stories.SuggestPriority(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "suggest priority", err)
		return
	}
	response.RespondOK(c, sug)
}
