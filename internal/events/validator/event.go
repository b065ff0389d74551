package validator

import (
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"crewcall/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type EventValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEventValidator(log *logger.Logger) *EventValidator {
	v := validation.New(log)
	log.Info("Event validator initialized successfully")

	return &EventValidator{
		validate: v,
		logger:   log,
	}
}

func (v *EventValidator) Validate(event *model.Event) error {
	return validation.Struct(v.validate, event)
}

func (v *EventValidator) ValidateUpdate(update *model.EventUpdate) error {
	return validation.Struct(v.validate, update)
}
