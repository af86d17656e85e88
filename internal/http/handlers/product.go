package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/productforge-backend/internal/http/response"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/services"
)

type ProductHandler struct {
	log      *logger.Logger
	products services.ProductService
	personas services.PersonaService
}

func NewProductHandler(log *logger.Logger, products services.ProductService, personas services.PersonaService) *ProductHandler {
	return &ProductHandler{
		log:      log.With("handler", "ProductHandler"),
		products: products,
		personas: personas,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := h.products.ListByOwner(c.Request.Context(), uid)
	if err != nil {
		fail(c, h.log, "list products", err)
		return
	}
	response.RespondOK(c, gin.H{"products": rows})
}

func (h *ProductHandler) Create(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.ProductInput
	if !bindJSON(c, &req, false) {
		return
	}
	p, err := h.products.Create(c.Request.Context(), uid, req)
	if err != nil {
		fail(c, h.log, "create product", err)
		return
	}
	response.RespondCreated(c, gin.H{"product": p})
}

func (h *ProductHandler) Get(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), uid, id)
	if err != nil {
		fail(c, h.log, "get product", err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

func (h *ProductHandler) Update(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.ProductPatch
	if !bindJSON(c, &req, false) {
		return
	}
	p, err := h.products.Update(c.Request.Context(), uid, id, req)
	if err != nil {
		fail(c, h.log, "update product", err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), uid, id); err != nil {
		fail(c, h.log, "delete product", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *ProductHandler) ListPersonas(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.personas.ListByProduct(c.Request.Context(), uid, id)
	if err != nil {
		fail(c, h.log, "list personas", err)
		return
	}
	response.RespondOK(c, gin.H{"personas": rows})
}

func (h *ProductHandler) CreatePersona(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.PersonaInput
	if !bindJSON(c, &req, false) {
		return
	}
	p, err := h.personas.Create(c.Request.Context(), uid, id, req)
	if err != nil {
		fail(c, h.log, "create persona", err)
		return
	}
	response.RespondCreated(c, gin.H{"persona": p})
}

func (h *ProductHandler) DeletePersona(c *gin.Context) {
	uid, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.personas.Delete(c.Request.Context(), uid, id); err != nil {
		fail(c, h.log, "delete persona", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
