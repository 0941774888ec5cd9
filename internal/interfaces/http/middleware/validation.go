package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// pageRangePattern matches IPP-style page selections: "3", "1-4", "1-4,7,10-12"
var pageRangePattern = regexp.MustCompile(`^\d+(-\d+)?(,\d+(-\d+)?)*$`)

// SetupValidator registers custom validation rules with gin's binding engine.
// Call once at startup before the first request is bound.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("pagerange", validatePageRange)
}

// validatePageRange accepts empty values; pair with omitempty for optional
// fields
func validatePageRange(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return pageRangePattern.MatchString(value)
}
