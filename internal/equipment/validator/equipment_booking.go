package validator

import (
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"crewcall/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type EquipmentBookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEquipmentBookingValidator(log *logger.Logger) *EquipmentBookingValidator {
	v := validation.New(log)
	log.Info("Equipment booking validator initialized successfully")

	return &EquipmentBookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *EquipmentBookingValidator) Validate(booking *model.EquipmentBooking) error {
	return validation.Struct(v.validate, booking)
}

func (v *EquipmentBookingValidator) ValidateUpdate(update *model.EquipmentBookingUpdate) error {
	return validation.Struct(v.validate, update)
}
