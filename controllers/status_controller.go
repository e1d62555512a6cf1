package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yunshui/materials-api/middleware"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/services"
)

// postStatus binds the track input, resolves the caller and appends the update
func postStatus[T any](c *gin.Context, post func(ctx context.Context, orderID uint, caller string, in T) (*models.StatusUpdate, error)) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, err := middleware.GetUserID(c)
	if err != nil {
		respondUnauthorized(c)
		return
	}
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	update, err := post(c.Request.Context(), orderID, caller, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, update)
}

// PostOrderStatus handles POST /api/v1/orders/:id/status/order
func (h *Handler) PostOrderStatus(c *gin.Context) {
	postStatus[services.OrderStatusInput](c, h.svc.Pipeline.PostOrderStatus)
}

// PostPickupStatus handles POST /api/v1/orders/:id/status/pickup
func (h *Handler) PostPickupStatus(c *gin.Context) {
	postStatus[services.PickupStatusInput](c, h.svc.Pipeline.PostPickupStatus)
}

// PostDeliveryStatus handles POST /api/v1/orders/:id/status/delivery
func (h *Handler) PostDeliveryStatus(c *gin.Context) {
	postStatus[services.DeliveryStatusInput](c, h.svc.Pipeline.PostDeliveryStatus)
}

// PostCheckStatus handles POST /api/v1/orders/:id/status/check. A non-empty
// status completes the project.
func (h *Handler) PostCheckStatus(c *gin.Context) {
	postStatus[services.CheckStatusInput](c, h.svc.Pipeline.PostCheckStatus)
}
