package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/productforge-backend/internal/http/response"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/services"
)

type EpicHandler struct {
	log   *logger.Logger
	epics services.EpicService
}

func NewEpicHandler(log *logger.Logger, epics services.EpicService) *EpicHandler {
	return &EpicHandler{log: log.With("handler", "EpicHandler"), epics: epics}
}

func (h *EpicHandler) ListMine(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := h.epics.ListByUser(c.Request.Context(), uid)
	if err != nil {
		fail(c, h.log, "list epics", err)
		return
	}
	response.RespondOK(c, gin.H{"epics": rows})
}

func (h *EpicHandler) ListByProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.epics.ListByProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "list product epics", err)
		return
	}
	response.RespondOK(c, gin.H{"epics": rows})
}

func (h *EpicHandler) Create(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !bindJSON(c, &req, false) {
		return
	}
	e, err := h.epics.Create(c.Request.Context(), &uid, services.EpicInput{
		ProductID:   productID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		fail(c, h.log, "create epic", err)
		return
	}
	response.RespondCreated(c, gin.H{"epic": e})
}

func (h *EpicHandler) Generate(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req generateRequest
	if !bindJSON(c, &req, true) {
		return
	}
	rows, err := h.epics.GenerateForProduct(c.Request.Context(), &uid, productID, req.Instruction)
	if err != nil {
		fail(c, h.log, "generate epics", err)
		return
	}
	response.RespondCreated(c, gin.H{"epics": rows, "count": len(rows)})
}

func (h *EpicHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.epics.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "get epic", err)
		return
	}
	response.RespondOK(c, gin.H{"epic": e})
}

func (h *EpicHandler) Update(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.EpicPatch
	if !bindJSON(c, &req, false) {
		return
	}
	e, err := h.epics.Update(c.Request.Context(), &uid, id, req)
	if err != nil {
		fail(c, h.log, "update epic", err)
		return
	}
	response.RespondOK(c, gin.H{"epic": e})
}

func (h *EpicHandler) Delete(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.epics.Delete(c.Request.Context(), &uid, id); err != nil {
		fail(c, h.log, "delete epic", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *EpicHandler) Stats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.epics.Stats(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, "epic stats", err)
		return
	}
	response.RespondOK(c, stats)
}
