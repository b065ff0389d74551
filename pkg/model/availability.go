package model

import "time"

type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "Available"
	StatusBooked      AvailabilityStatus = "Booked"
	StatusTentative   AvailabilityStatus = "Tentative"
	StatusUnavailable AvailabilityStatus = "Unavailable"
	// StatusPartial is only ever produced by the classifier, never stored.
	StatusPartial AvailabilityStatus = "Partial"
)

// AvailabilityRecord is one subject's status for one calendar day.
// (subject_id, date) is unique in the store.
type AvailabilityRecord struct {
	ID        string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SubjectID string             `json:"subject_id" bson:"subject_id" validate:"required,min=1,max=64"`
	Date      string             `json:"date" bson:"date" validate:"required,calendar_day"`
	Status    AvailabilityStatus `json:"status" bson:"status" validate:"required,oneof=Available Booked Tentative Unavailable"`
	Notes     string             `json:"notes,omitempty" bson:"notes" validate:"omitempty,max=500"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type AvailabilityUpdate struct {
	Status AvailabilityStatus `json:"status,omitempty" validate:"omitempty,oneof=Available Booked Tentative Unavailable"`
	Notes  *string            `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// AvailabilityBulkUpsert applies one status to many days of one subject.
type AvailabilityBulkUpsert struct {
	SubjectID string             `json:"subject_id" validate:"required,min=1,max=64"`
	Dates     []string           `json:"dates" validate:"required,min=1,max=366,dive,calendar_day"`
	Status    AvailabilityStatus `json:"status" validate:"required,oneof=Available Booked Tentative Unavailable"`
	Notes     string             `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type AvailabilityResult struct {
	SubjectID   string                `json:"subject_id"`
	IsAvailable bool                  `json:"is_available"`
	Status      AvailabilityStatus    `json:"status"`
	Conflicts   []*AvailabilityRecord `json:"conflicts"`
}

type AvailabilityBulkResult struct {
	SubjectID string `json:"subject_id"`
	Upserted  int64  `json:"upserted"`
	Updated   int64  `json:"updated"`
}

// AvailabilityChange is the payload of availability domain events.
type AvailabilityChange struct {
	SubjectID string             `json:"subject_id"`
	Dates     []string           `json:"dates"`
	Status    AvailabilityStatus `json:"status,omitempty"`
}

// IsStored reports whether s may be persisted on a record.
func (s AvailabilityStatus) IsStored() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusTentative, StatusUnavailable:
		return true
	default:
		return false
	}
}
