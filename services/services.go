package services

import (
	"github.com/yunshui/materials-api/clock"
	"github.com/yunshui/materials-api/metrics"
	"github.com/yunshui/materials-api/repository"
)

// Services wires every service over one store
type Services struct {
	Catalog  *CatalogService
	Orders   *OrderService
	Projects *ProjectService
	Pipeline *StatusPipeline
	Query    *StatusQuery
}

// New builds the services. images may be nil; clk defaults to the system clock
// and a nil m records no metrics.
func New(store *repository.Store, images ImageService, clk clock.Clock, m *metrics.Metrics) *Services {
	if clk == nil {
		clk = clock.System()
	}
	projects := NewProjectService(store.Projects, store.Orders, clk)
	return &Services{
		Catalog:  NewCatalogService(store.Materials, images),
		Orders:   NewOrderService(store.Orders, store.Materials, projects, clk, m),
		Projects: projects,
		Pipeline: NewStatusPipeline(projects, store.Projects, store.StatusUpdates, clk, m),
		Query:    NewStatusQuery(projects, store.Orders, store.StatusUpdates),
	}
}
