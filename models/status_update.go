package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// StatusType names one of the four independent tracks of a project
type StatusType string

const (
	StatusTypeOrder    StatusType = "ORDER"
	StatusTypePickup   StatusType = "PICKUP"
	StatusTypeDelivery StatusType = "DELIVERY"
	StatusTypeCheck    StatusType = "CHECK"
)

// StatusTypes lists every track in display order
var StatusTypes = []StatusType{StatusTypeOrder, StatusTypePickup, StatusTypeDelivery, StatusTypeCheck}

// Valid reports whether t is a known track
func (t StatusType) Valid() bool {
	switch t {
	case StatusTypeOrder, StatusTypePickup, StatusTypeDelivery, StatusTypeCheck:
		return true
	}
	return false
}

// StatusUpdate is one append-only entry in a project's status history
type StatusUpdate struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ProjectID      uint           `gorm:"not null;index:idx_status_updates_project_type" json:"project_id"`
	UpdatedBy      string         `gorm:"not null" json:"updated_by"`
	StatusType     StatusType     `gorm:"type:varchar(16);not null;index:idx_status_updates_project_type" json:"status_type"`
	StatusValue    string         `gorm:"type:text;not null" json:"status_value"`
	AdditionalData datatypes.JSON `json:"additional_data,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// TableName specifies the table name for the StatusUpdate model
func (StatusUpdate) TableName() string {
	return "status_updates"
}

// StatusData is the track-specific payload stored in AdditionalData.
// Each variant belongs to exactly one track; CHECK carries none.
type StatusData interface {
	Track() StatusType
}

// OrderStatusData is the payload of the ORDER track
type OrderStatusData struct {
	PrimaryStatus   string `json:"primary_status"`
	SecondaryStatus string `json:"secondary_status,omitempty"`
}

func (OrderStatusData) Track() StatusType { return StatusTypeOrder }

// PickupStatusData is the payload of the PICKUP track
type PickupStatusData struct {
	PrimaryStatus   string `json:"primary_status"`
	SecondaryStatus string `json:"secondary_status"`
}

func (PickupStatusData) Track() StatusType { return StatusTypePickup }

// DeliveryStatusData is the payload of a DELIVERY update whose status is "Delivered"
type DeliveryStatusData struct {
	Time        string `json:"time"`
	Address     string `json:"address"`
	PO          string `json:"po"`
	DeliveredBy string `json:"delivered_by"`
}

func (DeliveryStatusData) Track() StatusType { return StatusTypeDelivery }

// EncodeStatusData serializes a payload for storage. A nil payload encodes to nil.
func EncodeStatusData(data StatusData) (datatypes.JSON, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s status data: %w", data.Track(), err)
	}
	return datatypes.JSON(raw), nil
}

// Data decodes AdditionalData into the variant matching StatusType.
// It returns nil when the update carries no payload.
func (s StatusUpdate) Data() (StatusData, error) {
	if len(s.AdditionalData) == 0 || string(s.AdditionalData) == "null" {
		return nil, nil
	}

	var (
		data StatusData
		err  error
	)
	switch s.StatusType {
	case StatusTypeOrder:
		var d OrderStatusData
		err = json.Unmarshal(s.AdditionalData, &d)
		data = d
	case StatusTypePickup:
		var d PickupStatusData
		err = json.Unmarshal(s.AdditionalData, &d)
		data = d
	case StatusTypeDelivery:
		var d DeliveryStatusData
		err = json.Unmarshal(s.AdditionalData, &d)
		data = d
	default:
		return nil, fmt.Errorf("status type %q carries no additional data", s.StatusType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s status data: %w", s.StatusType, err)
	}
	return data, nil
}
