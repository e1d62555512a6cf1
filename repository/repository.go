package repository

import (
	"context"

	"github.com/yunshui/materials-api/models"
)

// Finders return (nil, nil) when no row matches; errors are reserved for storage failures.

// MaterialFilter narrows a catalog listing. Zero values are ignored.
type MaterialFilter struct {
	Type     models.MaterialType
	Category string
	Name     string // case-insensitive substring
	Supplier string
	Offset   int
	Limit    int
}

// OrderFilter narrows an order listing. Zero values are ignored.
type OrderFilter struct {
	Type   models.MaterialType
	UserID string
	Status models.OrderStatus
}

type MaterialRepository interface {
	Create(ctx context.Context, material *models.Material) error
	FindByID(ctx context.Context, id uint) (*models.Material, error)
	List(ctx context.Context, filter MaterialFilter) ([]models.Material, int64, error)
	Update(ctx context.Context, material *models.Material) error
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	Delete(ctx context.Context, id uint) error
}

// OrderRepository persists orders. Create stores the order row only; items are
// written one by one through CreateItem.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	CreateItem(ctx context.Context, item *models.OrderItem) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uint) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id uint) (*models.Project, error)
	FindByOrderID(ctx context.Context, orderID uint) (*models.Project, error)
	FindByName(ctx context.Context, name string) (*models.Project, error) // case-insensitive
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
}

// StatusUpdateRepository is append-only.
type StatusUpdateRepository interface {
	Create(ctx context.Context, update *models.StatusUpdate) error
	// ListByProject returns the history ordered by created_at, then insertion order.
	ListByProject(ctx context.Context, projectID uint) ([]models.StatusUpdate, error)
}

// Store groups the repositories of one storage backend
type Store struct {
	Driver        string
	Materials     MaterialRepository
	Orders        OrderRepository
	Projects      ProjectRepository
	StatusUpdates StatusUpdateRepository

	ping func(ctx context.Context) error
}

// Ping verifies the backend is reachable
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}
