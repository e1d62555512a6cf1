package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yunshui/materials-api/clock"
	"github.com/yunshui/materials-api/logger"
	"github.com/yunshui/materials-api/metrics"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/repository"
	"go.uber.org/zap"
)

// OrderService builds and manages orders. Order creation persists the order,
// then each item, then the project link, one write at a time; a failure part
// way through leaves the earlier writes in place.
type OrderService struct {
	orders    repository.OrderRepository
	materials repository.MaterialRepository
	projects  *ProjectService
	clock     clock.Clock
	metrics   *metrics.Metrics
}

func NewOrderService(orders repository.OrderRepository, materials repository.MaterialRepository, projects *ProjectService, clk clock.Clock, m *metrics.Metrics) *OrderService {
	if clk == nil {
		clk = clock.System()
	}
	return &OrderService{orders: orders, materials: materials, projects: projects, clock: clk, metrics: m}
}

// OrderItemInput is one requested line of an order
type OrderItemInput struct {
	MaterialID uint `json:"material_id" validate:"required"`
	Quantity   int  `json:"quantity" validate:"required,gte=1"`
}

// CreateOrderInput is the payload of CreateOrder. ProjectID attaches an
// existing project; otherwise NewProjectName creates one; with neither the
// project is created lazily by EnsureProject.
type CreateOrderInput struct {
	CallerID       string              `validate:"required"`
	Role           models.Role         `validate:"omitempty"`
	Type           models.MaterialType `validate:"omitempty,oneof=AUXILIARY FINISHED"`
	Name           string              `validate:"max=200"`
	Items          []OrderItemInput    `validate:"required,min=1,dive"`
	ProjectID      *uint
	NewProjectName string `validate:"max=200"`
}

// CreateOrder prices the requested items from the catalog and persists the order.
// Every item must match the order type: explicit, else the role's default,
// else the type of the first item's material.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	materials := make([]*models.Material, len(in.Items))
	for i, item := range in.Items {
		material, err := s.materials.FindByID(ctx, item.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("failed to load material %d: %w", item.MaterialID, err)
		}
		if material == nil {
			return nil, materialNotFound(item.MaterialID)
		}
		materials[i] = material
	}

	orderType := in.Type
	if orderType == "" {
		orderType = in.Role.DefaultOrderType()
	}
	if orderType == "" {
		orderType = materials[0].Type
	}
	for _, material := range materials {
		if material.Type != orderType {
			return nil, fmt.Errorf("%w: material %d is %s, order is %s",
				ErrWrongMaterialType, material.ID, material.Type, orderType)
		}
	}

	// project selection is checked before anything is written
	var existing *models.Project
	newProjectName := strings.TrimSpace(in.NewProjectName)
	switch {
	case in.ProjectID != nil:
		project, err := s.projects.GetProject(ctx, *in.ProjectID)
		if err != nil {
			return nil, err
		}
		existing = project
	case newProjectName != "":
		if err := s.projects.checkNameAvailable(ctx, newProjectName); err != nil {
			return nil, err
		}
	}

	items := make([]models.OrderItem, len(in.Items))
	total := decimal.Zero
	for i, item := range in.Items {
		items[i] = models.OrderItem{
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			UnitPrice:  materials[i].Price,
		}
		total = total.Add(items[i].LineTotal())
	}

	now := s.clock.Now()
	order := &models.Order{
		UserID:      in.CallerID,
		Type:        orderType,
		Status:      models.OrderStatusPending,
		TotalAmount: total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		order.Name = &name
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := s.orders.CreateItem(ctx, &items[i]); err != nil {
			return nil, fmt.Errorf("failed to create item %d of order %d: %w", i, order.ID, err)
		}
	}
	order.Items = items

	switch {
	case existing != nil:
		if err := s.projects.attachExisting(ctx, existing, order); err != nil {
			return nil, err
		}
	case newProjectName != "":
		orderID := order.ID
		project, err := s.projects.createNamedProject(ctx, newProjectName, &orderID)
		if err != nil {
			return nil, err
		}
		order.ProjectID = &project.ID
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to link project %d to order %d: %w", project.ID, order.ID, err)
		}
	}

	s.metrics.OrderCreated(string(order.Type))
	logger.FromContext(ctx).Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("type", string(order.Type)),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// GetOrder returns an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	if order == nil {
		return nil, orderNotFound(id)
	}
	return order, nil
}

// ListOrders returns orders matching the filter, newest first
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, invalidInput("unknown material type %q", filter.Type)
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus sets the approval status of an order
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, err)
	}
	return order, nil
}

// DeleteOrder removes an order and its items. Its project, if any, is kept.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	if _, err := s.GetOrder(ctx, id); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	logger.FromContext(ctx).Info("order deleted", zap.Uint("order_id", id))
	return nil
}
