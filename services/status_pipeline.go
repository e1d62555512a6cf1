package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yunshui/materials-api/clock"
	"github.com/yunshui/materials-api/logger"
	"github.com/yunshui/materials-api/metrics"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/repository"
	"go.uber.org/zap"
)

// DeliveredStatus is the DELIVERY value that carries delivery details
const DeliveredStatus = "Delivered"

// orderedStatus is the ORDER primary status whose secondary status is folded into the value
const orderedStatus = "Ordered"

// StatusPipeline appends status updates to the four tracks of a project.
// Tracks are independent; nothing orders one track after another.
type StatusPipeline struct {
	projects *ProjectService
	repo     repository.ProjectRepository
	updates  repository.StatusUpdateRepository
	clock    clock.Clock
	metrics  *metrics.Metrics
}

func NewStatusPipeline(projects *ProjectService, repo repository.ProjectRepository, updates repository.StatusUpdateRepository, clk clock.Clock, m *metrics.Metrics) *StatusPipeline {
	if clk == nil {
		clk = clock.System()
	}
	return &StatusPipeline{projects: projects, repo: repo, updates: updates, clock: clk, metrics: m}
}

type OrderStatusInput struct {
	PrimaryStatus   string `json:"primary_status" validate:"required,max=100"`
	SecondaryStatus string `json:"secondary_status" validate:"max=100"`
}

type PickupStatusInput struct {
	PrimaryStatus   string `json:"primary_status" validate:"required,max=100"`
	SecondaryStatus string `json:"secondary_status" validate:"required,max=100"`
}

// DeliveryStatusInput carries the delivery details, which are kept only when
// Status is "Delivered"
type DeliveryStatusInput struct {
	Status      string `json:"status" validate:"required,max=100"`
	Time        string `json:"time"`
	Address     string `json:"address"`
	PO          string `json:"po"`
	DeliveredBy string `json:"delivered_by"`
}

// CheckStatusInput may carry an empty status, which records the check without completing the project
type CheckStatusInput struct {
	Status string `json:"status" validate:"max=200"`
}

// PostOrderStatus appends to the ORDER track. "Ordered" with a secondary
// status is recorded as "Ordered - <secondary>".
func (p *StatusPipeline) PostOrderStatus(ctx context.Context, orderID uint, caller string, in OrderStatusInput) (*models.StatusUpdate, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	value := in.PrimaryStatus
	if in.PrimaryStatus == orderedStatus && in.SecondaryStatus != "" {
		value = fmt.Sprintf("%s - %s", in.PrimaryStatus, in.SecondaryStatus)
	}
	data := models.OrderStatusData{PrimaryStatus: in.PrimaryStatus, SecondaryStatus: in.SecondaryStatus}

	project, err := p.projects.ProjectForOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return p.append(ctx, project, caller, models.StatusTypeOrder, value, data)
}

// PostPickupStatus appends "<primary> <secondary>" to the PICKUP track
func (p *StatusPipeline) PostPickupStatus(ctx context.Context, orderID uint, caller string, in PickupStatusInput) (*models.StatusUpdate, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	value := in.PrimaryStatus + " " + in.SecondaryStatus
	data := models.PickupStatusData{PrimaryStatus: in.PrimaryStatus, SecondaryStatus: in.SecondaryStatus}

	project, err := p.projects.ProjectForOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return p.append(ctx, project, caller, models.StatusTypePickup, value, data)
}

func (p *StatusPipeline) PostDeliveryStatus(ctx context.Context, orderID uint, caller string, in DeliveryStatusInput) (*models.StatusUpdate, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var data models.StatusData
	if in.Status == DeliveredStatus {
		data = models.DeliveryStatusData{
			Time:        in.Time,
			Address:     in.Address,
			PO:          in.PO,
			DeliveredBy: in.DeliveredBy,
		}
	}

	project, err := p.projects.ProjectForOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return p.append(ctx, project, caller, models.StatusTypeDelivery, in.Status, data)
}

// PostCheckStatus appends to the CHECK track. A non-empty status marks the
// project COMPLETED; this is the only automatic project transition.
func (p *StatusPipeline) PostCheckStatus(ctx context.Context, orderID uint, caller string, in CheckStatusInput) (*models.StatusUpdate, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	project, err := p.projects.ProjectForOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	update, err := p.append(ctx, project, caller, models.StatusTypeCheck, in.Status, nil)
	if err != nil {
		return nil, err
	}

	if in.Status != "" {
		wasCompleted := project.OverallStatus == models.ProjectStatusCompleted
		project.OverallStatus = models.ProjectStatusCompleted
		project.UpdatedAt = p.clock.Now()
		if err := p.repo.Update(ctx, project); err != nil {
			return nil, fmt.Errorf("failed to complete project %d: %w", project.ID, err)
		}
		if !wasCompleted {
			p.metrics.ProjectCompleted()
			logger.FromContext(ctx).Info("project completed",
				zap.Uint("project_id", project.ID),
				zap.Uint("order_id", orderID),
			)
		}
	}
	return update, nil
}

func (p *StatusPipeline) append(ctx context.Context, project *models.Project, caller string, track models.StatusType, value string, data models.StatusData) (*models.StatusUpdate, error) {
	if strings.TrimSpace(caller) == "" {
		return nil, invalidInput("caller is required")
	}
	raw, err := models.EncodeStatusData(data)
	if err != nil {
		return nil, err
	}

	update := &models.StatusUpdate{
		ProjectID:      project.ID,
		UpdatedBy:      caller,
		StatusType:     track,
		StatusValue:    value,
		AdditionalData: raw,
		CreatedAt:      p.clock.Now(),
	}
	if err := p.updates.Create(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to append %s status to project %d: %w", track, project.ID, err)
	}

	p.metrics.StatusPosted(string(track))
	logger.FromContext(ctx).Info("status posted",
		zap.Uint("project_id", project.ID),
		zap.String("track", string(track)),
		zap.String("value", value),
		zap.String("updated_by", caller),
	)
	return update, nil
}
