package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/services"
)

// UpdateQuantityRequest represents the request body for a stock update
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ListMaterials handles GET /api/v1/materials
func (h *Handler) ListMaterials(c *gin.Context) {
	page, ok := queryInt(c, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	result, err := h.svc.Catalog.List(c.Request.Context(), services.MaterialQuery{
		Type:     models.MaterialType(c.Query("type")),
		Category: c.Query("category"),
		Name:     c.Query("name"),
		Supplier: c.Query("supplier"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// GetMaterial handles GET /api/v1/materials/:id
func (h *Handler) GetMaterial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	material, err := h.svc.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, material)
}

// CreateMaterial handles POST /api/v1/materials
func (h *Handler) CreateMaterial(c *gin.Context) {
	var req services.MaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	material, err := h.svc.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, material)
}

// UpdateMaterial handles PUT /api/v1/materials/:id; omitted fields are kept
func (h *Handler) UpdateMaterial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.MaterialUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	material, err := h.svc.Catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, material)
}

// UpdateMaterialQuantity handles PATCH /api/v1/materials/:id/quantity
func (h *Handler) UpdateMaterialQuantity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	material, err := h.svc.Catalog.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, material)
}

// DeleteMaterial handles DELETE /api/v1/materials/:id
func (h *Handler) DeleteMaterial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// UploadMaterialImage handles POST /api/v1/materials/:id/image (multipart field "image")
func (h *Handler) UploadMaterialImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "NO_FILE", "An image file is required in the \"image\" field", nil)
		return
	}
	material, err := h.svc.Catalog.AttachImage(c.Request.Context(), id, file)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, material)
}
