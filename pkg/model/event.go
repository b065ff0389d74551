package model

import "time"

type Event struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProjectID string    `json:"project_id,omitempty" bson:"project_id,omitempty" validate:"omitempty,max=64"`
	Title     string    `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Location  string    `json:"location,omitempty" bson:"location" validate:"omitempty,max=200"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Attendees []string  `json:"attendees" bson:"attendees" validate:"omitempty,max=200,attendee_set"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type EventUpdate struct {
	ProjectID *string    `json:"project_id,omitempty" validate:"omitempty,max=64"`
	Title     string     `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Location  *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	StartTime *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	Attendees *[]string  `json:"attendees,omitempty" validate:"omitempty"`
}
