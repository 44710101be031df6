package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	deviceStatuses   = []string{"active", "maintenance", "inactive"}
	scheduleStatuses = []string{"pending", "in-progress", "completed"}
)

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("device_status", oneOfFold(deviceStatuses))
	_ = validate.RegisterValidation("schedule_status", oneOfFold(scheduleStatuses))
	_ = validate.RegisterValidation("date", validateDate)
	_ = validate.RegisterValidation("timestamp", validateTimestamp)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// oneOfFold matches case-insensitively; an empty value is left to the
// required/omitempty tags.
func oneOfFold(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		if value == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(value, a) {
				return true
			}
		}
		return false
	}
}

// validateDate accepts an empty string, which clears the date on update.
func validateDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.TrimSpace(value) == "" {
		return true
	}
	_, err := ParseDate(value)
	return err == nil
}

func validateTimestamp(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strings.TrimSpace(value) == "" {
		return true
	}
	_, err := ParseTimestamp(value)
	return err == nil
}
