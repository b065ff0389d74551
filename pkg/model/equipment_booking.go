package model

import "time"

type EquipmentBookingStatus string

const (
	EquipmentReserved  EquipmentBookingStatus = "Reserved"
	EquipmentInUse     EquipmentBookingStatus = "In Use"
	EquipmentReturned  EquipmentBookingStatus = "Returned"
	EquipmentCancelled EquipmentBookingStatus = "Cancelled"
)

// Occupies reports whether a booking in this status holds the equipment.
func (s EquipmentBookingStatus) Occupies() bool {
	return s != EquipmentCancelled && s != EquipmentReturned
}

type EquipmentBooking struct {
	ID          string                 `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	EquipmentID string                 `json:"equipment_id" bson:"equipment_id" validate:"required,min=1,max=64"`
	EventID     string                 `json:"event_id,omitempty" bson:"event_id,omitempty" validate:"omitempty,max=64"`
	StartTime   time.Time              `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time              `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status      EquipmentBookingStatus `json:"status" bson:"status" validate:"required,oneof=Reserved 'In Use' Returned Cancelled"`
	Notes       string                 `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=500"`
	CreatedAt   time.Time              `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type EquipmentBookingUpdate struct {
	EventID   *string                `json:"event_id,omitempty" validate:"omitempty,max=64"`
	StartTime *time.Time             `json:"start_time,omitempty" validate:"omitempty"`
	EndTime   *time.Time             `json:"end_time,omitempty" validate:"omitempty"`
	Status    EquipmentBookingStatus `json:"status,omitempty" validate:"omitempty,oneof=Reserved 'In Use' Returned Cancelled"`
	Notes     *string                `json:"notes,omitempty" validate:"omitempty,max=500"`
}
