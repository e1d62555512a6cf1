package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialType separates auxiliary supplies from finished goods
type MaterialType string

const (
	MaterialTypeAuxiliary MaterialType = "AUXILIARY"
	MaterialTypeFinished  MaterialType = "FINISHED"
)

// Valid reports whether t is one of the known material types
func (t MaterialType) Valid() bool {
	return t == MaterialTypeAuxiliary || t == MaterialTypeFinished
}

// Label returns the category label used in generated project names
func (t MaterialType) Label() string {
	switch t {
	case MaterialTypeAuxiliary:
		return "輔材"
	case MaterialTypeFinished:
		return "完成材"
	}
	return string(t)
}

// Material represents a sellable catalog item
type Material struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null;index" json:"name"`
	Category  string          `gorm:"index" json:"category"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Quantity  int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Supplier  string          `json:"supplier"`
	Type      MaterialType    `gorm:"type:varchar(16);not null;index" json:"type"`
	ImageKey  *string         `json:"image_key,omitempty"`     // nullable, storage key of the uploaded picture
	ImageURL  *string         `gorm:"-" json:"image_url,omitempty"` // computed field, resolved from ImageKey on read
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}
