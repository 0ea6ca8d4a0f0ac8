// internal/handlers/attribute.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kon/onlineshop/internal/services"
	"github.com/kon/onlineshop/internal/utils"
)

type AttributeHandler struct {
	attributeService *services.AttributeService
}

func NewAttributeHandler(attributeService *services.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributeService: attributeService}
}

// GET /attributes
func (h *AttributeHandler) GetAttributes(c *gin.Context) {
	attributes, err := h.attributeService.GetAllAttributes()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, attributes)
}

// GET /attributes/:id
func (h *AttributeHandler) GetAttribute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attribute, err := h.attributeService.GetAttribute(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, attribute)
}

// POST /admin/attributes
func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	var req services.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	attribute, err := h.attributeService.CreateAttribute(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, attribute)
}

// PUT /admin/attributes/:id
func (h *AttributeHandler) UpdateAttribute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	attribute, err := h.attributeService.UpdateAttribute(id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, attribute)
}

// DELETE /admin/attributes/:id
func (h *AttributeHandler) DeleteAttribute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.attributeService.DeleteAttribute(id); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": id})
}
