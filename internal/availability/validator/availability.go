package validator

import (
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"crewcall/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AvailabilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	v := validation.New(log)
	log.Info("Availability validator initialized successfully")

	return &AvailabilityValidator{
		validate: v,
		logger:   log,
	}
}

func (v *AvailabilityValidator) Validate(record *model.AvailabilityRecord) error {
	return validation.Struct(v.validate, record)
}

func (v *AvailabilityValidator) ValidateUpdate(update *model.AvailabilityUpdate) error {
	return validation.Struct(v.validate, update)
}

func (v *AvailabilityValidator) ValidateBulk(bulk *model.AvailabilityBulkUpsert) error {
	return validation.Struct(v.validate, bulk)
}
