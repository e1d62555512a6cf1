package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yunshui/materials-api/clock"
	"github.com/yunshui/materials-api/logger"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/repository"
	"go.uber.org/zap"
)

// ProjectService links orders to the projects that carry their status history.
// Lookup-then-create is not locked; concurrent calls for one order may create two projects.
type ProjectService struct {
	projects repository.ProjectRepository
	orders   repository.OrderRepository
	clock    clock.Clock
}

func NewProjectService(projects repository.ProjectRepository, orders repository.OrderRepository, clk clock.Clock) *ProjectService {
	if clk == nil {
		clk = clock.System()
	}
	return &ProjectService{projects: projects, orders: orders, clock: clk}
}

// ProjectName builds the generated name of an order's project,
// e.g. "輔材專案-2026-05-01-12"
func ProjectName(order *models.Order) string {
	return fmt.Sprintf("%s專案-%s-%d", order.Type.Label(), order.CreatedAt.Format("2006-01-02"), order.ID)
}

// ProjectForOrder returns the project linked to an order without creating one.
// The project owning the order id wins; an explicit order.ProjectID is the fallback.
func (s *ProjectService) ProjectForOrder(ctx context.Context, order *models.Order) (*models.Project, error) {
	project, err := s.projects.FindByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project of order %d: %w", order.ID, err)
	}
	if project != nil || order.ProjectID == nil {
		return project, nil
	}

	project, err = s.projects.FindByID(ctx, *order.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", *order.ProjectID, err)
	}
	return project, nil
}

// ProjectForOrderID is ProjectForOrder keyed by order id. It returns
// ErrProjectNotFound when the order has no project or does not exist.
func (s *ProjectService) ProjectForOrderID(ctx context.Context, orderID uint) (*models.Project, error) {
	project, err := s.projects.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find project of order %d: %w", orderID, err)
	}
	if project != nil {
		return project, nil
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order != nil {
		if project, err = s.ProjectForOrder(ctx, order); err != nil {
			return nil, err
		}
	}
	if project == nil {
		return nil, fmt.Errorf("%w: no project for order %d", ErrProjectNotFound, orderID)
	}
	return project, nil
}

// EnsureProjectForOrder returns the order's project, creating and linking one
// with a generated name when none exists. Repeated calls return the same project.
func (s *ProjectService) EnsureProjectForOrder(ctx context.Context, order *models.Order) (*models.Project, error) {
	project, err := s.ProjectForOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	if project != nil {
		return project, nil
	}

	orderID := order.ID
	now := s.clock.Now()
	project = &models.Project{
		OrderID:       &orderID,
		ProjectName:   ProjectName(order),
		OverallStatus: models.ProjectStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project for order %d: %w", order.ID, err)
	}

	order.ProjectID = &project.ID
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to link project %d to order %d: %w", project.ID, order.ID, err)
	}

	logger.FromContext(ctx).Info("project created for order",
		zap.Uint("order_id", order.ID),
		zap.Uint("project_id", project.ID),
		zap.String("project_name", project.ProjectName),
	)
	return project, nil
}

// EnsureProject loads an order and ensures it has a project
func (s *ProjectService) EnsureProject(ctx context.Context, orderID uint) (*models.Project, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	if order == nil {
		return nil, orderNotFound(orderID)
	}
	return s.EnsureProjectForOrder(ctx, order)
}

// CreateStandaloneProject creates a project that is not tied to any order yet
func (s *ProjectService) CreateStandaloneProject(ctx context.Context, name string) (*models.Project, error) {
	return s.createNamedProject(ctx, name, nil)
}

func (s *ProjectService) createNamedProject(ctx context.Context, name string, orderID *uint) (*models.Project, error) {
	if err := s.checkNameAvailable(ctx, name); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	project := &models.Project{
		OrderID:       orderID,
		ProjectName:   strings.TrimSpace(name),
		OverallStatus: models.ProjectStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", project.ProjectName, err)
	}
	return project, nil
}

// checkNameAvailable fails with ErrDuplicateProjectName on a case-insensitive clash
func (s *ProjectService) checkNameAvailable(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalidInput("project name is required")
	}
	existing, err := s.projects.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to look up project name %q: %w", name, err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateProjectName, name)
	}
	return nil
}

// GetProject returns a project by id
func (s *ProjectService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %d: %w", id, err)
	}
	if project == nil {
		return nil, fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
	}
	return project, nil
}

// ListProjects returns every project, newest first
func (s *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// attachExisting links an existing project to a freshly created order. A
// standalone project is claimed by the order.
func (s *ProjectService) attachExisting(ctx context.Context, project *models.Project, order *models.Order) error {
	if project.OrderID == nil {
		orderID := order.ID
		project.OrderID = &orderID
		project.UpdatedAt = s.clock.Now()
		if err := s.projects.Update(ctx, project); err != nil {
			return fmt.Errorf("failed to link order %d to project %d: %w", order.ID, project.ID, err)
		}
	}
	order.ProjectID = &project.ID
	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("failed to link project %d to order %d: %w", project.ID, order.ID, err)
	}
	return nil
}
