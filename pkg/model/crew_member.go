package model

import "time"

type CrewMember struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Role      string    `json:"role" bson:"role" validate:"required,min=2,max=100"`
	Phone     string    `json:"phone,omitempty" bson:"phone" validate:"e164_or_empty"`
	Email     string    `json:"email,omitempty" bson:"email" validate:"omitempty,email"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type CrewMemberUpdate struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Role   string `json:"role,omitempty" validate:"omitempty,min=2,max=100"`
	Phone  string `json:"phone,omitempty" validate:"e164_or_empty"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Active *bool  `json:"active,omitempty"`
}
