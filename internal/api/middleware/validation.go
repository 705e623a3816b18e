package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"video-search/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateRequest binds the JSON body, checks struct tags, then domain rules
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errors.NewValidationError("Validation failed", fieldErrors(err, "request", "invalid JSON format"))
	}
	return validateDomain(req)
}

// ValidateQuery binds and validates query parameters
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return errors.NewValidationError("Invalid query parameters", fieldErrors(err, "query", "invalid query parameters"))
	}
	return validateDomain(req)
}

func validateDomain(req interface{}) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func fieldErrors(err error, fallbackKey, fallbackMsg string) map[string]string {
	out := make(map[string]string)
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out[fallbackKey] = fallbackMsg
		return out
	}
	for _, fieldError := range validationErrs {
		field := strings.ToLower(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			out[field] = "is required"
		case "min":
			out[field] = "is too small"
		case "max":
			out[field] = "is too large"
		case "oneof":
			out[field] = "must be one of " + fieldError.Param()
		default:
			out[field] = "is invalid"
		}
	}
	return out
}
