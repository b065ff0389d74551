package validator

import (
	"crewcall/pkg/logger"
	"crewcall/pkg/model"
	"crewcall/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type CrewValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCrewValidator(log *logger.Logger) *CrewValidator {
	v := validation.New(log)
	log.Info("Crew validator initialized successfully")

	return &CrewValidator{
		validate: v,
		logger:   log,
	}
}

func (v *CrewValidator) Validate(member *model.CrewMember) error {
	return validation.Struct(v.validate, member)
}

func (v *CrewValidator) ValidateUpdate(update *model.CrewMemberUpdate) error {
	return validation.Struct(v.validate, update)
}
