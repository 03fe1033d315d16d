package server

import (
	"fmt"

	"github.com/crewbase/gangplank/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidators installs the enum validators used by request DTO
// binding tags. Safe to call more than once.
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("server: unexpected binding validator engine %T", binding.Validator.Engine())
	}

	checks := map[string]validator.Func{
		"stage": func(fl validator.FieldLevel) bool {
			return models.Stage(fl.Field().String()).Valid()
		},
		"controlledby": func(fl validator.FieldLevel) bool {
			return models.ControlledBy(fl.Field().String()).Valid()
		},
		"decision": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "approve" || s == "reject"
		},
	}
	for tag, fn := range checks {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("server: register %q validator: %w", tag, err)
		}
	}
	return nil
}
