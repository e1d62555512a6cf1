package models

import "time"

// ProjectStatus is the overall state of a tracking project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

// Project anchors the status history of an order. OrderID is nil for standalone projects.
type Project struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderID       *uint         `gorm:"index" json:"order_id"`
	ProjectName   string        `gorm:"not null;index" json:"project_name"`
	OverallStatus ProjectStatus `gorm:"type:varchar(16);not null;default:'ACTIVE'" json:"overall_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Project model
func (Project) TableName() string {
	return "projects"
}

// All returns every model that is persisted, in migration order
func All() []interface{} {
	return []interface{}{
		&Material{}, &Order{}, &OrderItem{}, &Project{}, &StatusUpdate{},
	}
}
