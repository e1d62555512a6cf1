package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the approval state of an order, independent of its tracking project
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected, OrderStatusCompleted:
		return true
	}
	return false
}

// Order represents a materials order placed by a user
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"not null;index" json:"user_id"` // subject of the creating user's token
	Name        *string         `json:"name,omitempty"`
	Type        MaterialType    `gorm:"type:varchar(16);not null;index" json:"type"`
	Status      OrderStatus     `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_amount"` // frozen at creation time
	ProjectID   *uint           `gorm:"index" json:"project_id"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a single line of an order with the unit price captured at order time
type OrderItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    uint            `gorm:"not null;index" json:"order_id"`
	MaterialID uint            `gorm:"not null;index" json:"material_id"`
	Quantity   int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal returns quantity × unit price
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
