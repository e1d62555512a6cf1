package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yunshui/materials-api/middleware"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/services"
)

// Handler serves the v1 API on top of the services
type Handler struct {
	svc       *services.Services
	uploadDir string
}

// NewHandler creates a Handler. uploadDir is where locally stored images are served from.
func NewHandler(svc *services.Services, uploadDir string) *Handler {
	return &Handler{svc: svc, uploadDir: uploadDir}
}

// RegisterRoutes mounts the authenticated and public v1 routes on v1.
// auth must validate the caller and populate the auth context.
func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup, auth gin.HandlerFunc) {
	v1.GET("/uploads/:filename", h.GetUploadedImage)

	editors := middleware.RequireRole(models.RoleAdmin, models.RolePM, models.RoleAM)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	protected := v1.Group("")
	protected.Use(auth)
	{
		materials := protected.Group("/materials")
		materials.GET("", h.ListMaterials)
		materials.GET("/:id", h.GetMaterial)
		materials.POST("", editors, h.CreateMaterial)
		materials.PUT("/:id", editors, h.UpdateMaterial)
		materials.PATCH("/:id/quantity", middleware.RequireRole(models.RoleAdmin, models.RolePM, models.RoleAM, models.RoleWarehouse), h.UpdateMaterialQuantity)
		materials.DELETE("/:id", adminOnly, h.DeleteMaterial)
		materials.POST("/:id/image", editors, h.UploadMaterialImage)

		orders := protected.Group("/orders")
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/status", adminOnly, h.UpdateOrderStatus)
		orders.DELETE("/:id", adminOnly, h.DeleteOrder)
		orders.POST("/:id/project", h.EnsureProject)
		orders.POST("/:id/status/order", h.PostOrderStatus)
		orders.POST("/:id/status/pickup", h.PostPickupStatus)
		orders.POST("/:id/status/delivery", h.PostDeliveryStatus)
		orders.POST("/:id/status/check", h.PostCheckStatus)

		projects := protected.Group("/projects")
		projects.GET("", h.ListProjects)
		projects.POST("", editors, h.CreateProject)
		projects.GET("/:id/status", h.GetProjectStatusHistory)
	}
}
