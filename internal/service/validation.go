package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/salmaanit26/Query-Management-System/internal/models"
)

func registerQueryValidations(v *validator.Validate) {
	_ = v.RegisterValidation("query_status", func(fl validator.FieldLevel) bool {
		return models.QueryStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("query_category", func(fl validator.FieldLevel) bool {
		return models.QueryCategory(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("query_priority", func(fl validator.FieldLevel) bool {
		return models.QueryPriority(fl.Field().String()).Valid()
	})
}
