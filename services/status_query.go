package services

import (
	"context"
	"fmt"

	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/repository"
)

// StatusNotSet labels a track with no updates
const StatusNotSet = "未設定"

// LatestStatuses holds the most recent update of each track, nil when the track is empty
type LatestStatuses struct {
	Order    *models.StatusUpdate `json:"ORDER"`
	Pickup   *models.StatusUpdate `json:"PICKUP"`
	Delivery *models.StatusUpdate `json:"DELIVERY"`
	Check    *models.StatusUpdate `json:"CHECK"`
}

// Get returns the latest update of track t
func (l LatestStatuses) Get(t models.StatusType) *models.StatusUpdate {
	switch t {
	case models.StatusTypeOrder:
		return l.Order
	case models.StatusTypePickup:
		return l.Pickup
	case models.StatusTypeDelivery:
		return l.Delivery
	case models.StatusTypeCheck:
		return l.Check
	}
	return nil
}

func (l *LatestStatuses) set(u *models.StatusUpdate) {
	switch u.StatusType {
	case models.StatusTypeOrder:
		l.Order = u
	case models.StatusTypePickup:
		l.Pickup = u
	case models.StatusTypeDelivery:
		l.Delivery = u
	case models.StatusTypeCheck:
		l.Check = u
	}
}

// StatusSummary is the per-track label shown in listings
type StatusSummary struct {
	Order    string `json:"order"`
	Pickup   string `json:"pickup"`
	Delivery string `json:"delivery"`
	Check    string `json:"check"`
}

// EnrichedOrder is an order joined with its project and status snapshot
type EnrichedOrder struct {
	models.Order
	Project        *models.Project `json:"project"`
	StatusSummary  StatusSummary   `json:"status_summary"`
	LatestStatuses LatestStatuses  `json:"latest_statuses"`
}

// ProjectStatusHistory is a project with its full, oldest-first status log
type ProjectStatusHistory struct {
	Project        *models.Project       `json:"project"`
	StatusHistory  []models.StatusUpdate `json:"status_history"`
	LatestStatuses LatestStatuses        `json:"latest_statuses"`
}

// StatusQuery derives status snapshots on every call; nothing is cached.
type StatusQuery struct {
	projects *ProjectService
	orders   repository.OrderRepository
	updates  repository.StatusUpdateRepository
}

func NewStatusQuery(projects *ProjectService, orders repository.OrderRepository, updates repository.StatusUpdateRepository) *StatusQuery {
	return &StatusQuery{projects: projects, orders: orders, updates: updates}
}

// LatestPerTrack returns the newest update of each track of a project
func (q *StatusQuery) LatestPerTrack(ctx context.Context, projectID uint) (LatestStatuses, error) {
	history, err := q.updates.ListByProject(ctx, projectID)
	if err != nil {
		return LatestStatuses{}, fmt.Errorf("failed to load status history of project %d: %w", projectID, err)
	}
	return latestOf(history), nil
}

// latestOf expects history ordered oldest first, so the last update seen per track wins
func latestOf(history []models.StatusUpdate) LatestStatuses {
	var latest LatestStatuses
	for i := range history {
		latest.set(&history[i])
	}
	return latest
}

// Summarize turns the latest updates into display labels
func Summarize(latest LatestStatuses) StatusSummary {
	label := func(u *models.StatusUpdate) string {
		if u == nil {
			return StatusNotSet
		}
		return u.StatusValue
	}
	return StatusSummary{
		Order:    label(latest.Order),
		Pickup:   label(latest.Pickup),
		Delivery: label(latest.Delivery),
		Check:    label(latest.Check),
	}
}

// EnrichOrder attaches the order's project and status snapshot. It never creates
// a project; an unlinked order gets a nil project and an all-unset summary.
func (q *StatusQuery) EnrichOrder(ctx context.Context, order *models.Order) (*EnrichedOrder, error) {
	project, err := q.projects.ProjectForOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	var latest LatestStatuses
	if project != nil {
		if latest, err = q.LatestPerTrack(ctx, project.ID); err != nil {
			return nil, err
		}
	}
	return &EnrichedOrder{
		Order:          *order,
		Project:        project,
		StatusSummary:  Summarize(latest),
		LatestStatuses: latest,
	}, nil
}

// GetProjectStatusHistory returns a project with its status history
func (q *StatusQuery) GetProjectStatusHistory(ctx context.Context, projectID uint) (*ProjectStatusHistory, error) {
	project, err := q.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	history, err := q.updates.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history of project %d: %w", projectID, err)
	}
	if history == nil {
		history = []models.StatusUpdate{}
	}
	return &ProjectStatusHistory{
		Project:        project,
		StatusHistory:  history,
		LatestStatuses: latestOf(history),
	}, nil
}

// ListOrdersWithStatus enriches every order matching the filter
func (q *StatusQuery) ListOrdersWithStatus(ctx context.Context, filter repository.OrderFilter) ([]EnrichedOrder, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, invalidInput("unknown material type %q", filter.Type)
	}
	orders, err := q.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	enriched := make([]EnrichedOrder, 0, len(orders))
	for i := range orders {
		e, err := q.EnrichOrder(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		enriched = append(enriched, *e)
	}
	return enriched, nil
}
