package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yunshui/materials-api/middleware"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/repository"
	"github.com/yunshui/materials-api/services"
)

// CreateOrderRequest represents the request body for creating an order.
// ProjectID attaches an existing project, NewProjectName creates one.
type CreateOrderRequest struct {
	Type           models.MaterialType       `json:"type"`
	Name           string                    `json:"name"`
	Items          []services.OrderItemInput `json:"items" binding:"required,min=1,dive"`
	ProjectID      *uint                     `json:"project_id"`
	NewProjectName string                    `json:"new_project_name"`
}

// UpdateOrderStatusRequest represents the request body for the approval workflow
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders. PM orders auxiliary materials, AM
// finished ones, ADMIN either.
func (h *Handler) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}
	role, err := middleware.GetUserRole(c)
	if err != nil {
		respondForbidden(c, "A role is required to create orders")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Type != "" && !req.Type.Valid() {
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", "type must be AUXILIARY or FINISHED")
		return
	}

	if role != models.RoleAdmin {
		orderType := req.Type
		if orderType == "" {
			orderType = role.DefaultOrderType()
		}
		if !role.CanCreateOrder(orderType) {
			respondForbidden(c, "Your role cannot create this type of order")
			return
		}
	}

	order, err := h.svc.Orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		CallerID:       userID,
		Role:           role,
		Type:           req.Type,
		Name:           req.Name,
		Items:          req.Items,
		ProjectID:      req.ProjectID,
		NewProjectName: req.NewProjectName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders?type=&status=. PM only sees auxiliary
// orders and AM only finished ones.
func (h *Handler) ListOrders(c *gin.Context) {
	filter := repository.OrderFilter{
		Type:   models.MaterialType(strings.ToUpper(c.Query("type"))),
		Status: models.OrderStatus(strings.ToUpper(c.Query("status"))),
	}
	if role, err := middleware.GetUserRole(c); err == nil {
		if forced := role.DefaultOrderType(); forced != "" {
			filter.Type = forced
		}
	}
	if filter.Status != "" && !filter.Status.Valid() {
		respondFailure(c, http.StatusBadRequest, "INVALID_PARAMETER", "Invalid status parameter", nil)
		return
	}

	orders, err := h.svc.Query.ListOrdersWithStatus(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	enriched, err := h.svc.Query.EnrichOrder(c.Request.Context(), order)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, enriched)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := h.svc.Orders.UpdateOrderStatus(c.Request.Context(), id, models.OrderStatus(strings.ToUpper(string(req.Status))))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// EnsureProject handles POST /api/v1/orders/:id/project
func (h *Handler) EnsureProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	project, err := h.svc.Projects.EnsureProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, project)
}
