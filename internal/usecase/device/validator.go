package device

import (
	"strings"
	"time"

	domainDevice "it-asset-dashboard/internal/domain/device"
	appErrors "it-asset-dashboard/pkg/errors"
	"it-asset-dashboard/pkg/utils"
)

const invalidDatesMessage = "Warranty expiry date cannot be earlier than purchase date"

// ValidateRequiredFields reports DeviceName, SerialNumber and Model when blank.
func ValidateRequiredFields(name, serial, model string) error {
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "DeviceName")
	}
	if strings.TrimSpace(serial) == "" {
		missing = append(missing, "SerialNumber")
	}
	if strings.TrimSpace(model) == "" {
		missing = append(missing, "Model")
	}
	if len(missing) == 0 {
		return nil
	}

	err := appErrors.NewInvalidInput(appErrors.CodeMissingFields,
		"Missing required fields: "+strings.Join(missing, ", "))
	err.Details = missing
	return err
}

// ValidateWarranty rejects an expiry earlier than the purchase date.
func ValidateWarranty(purchase, expiry *time.Time) error {
	if !domainDevice.WarrantyValid(purchase, expiry) {
		return appErrors.NewInvalidInput(appErrors.CodeInvalidDates, invalidDatesMessage)
	}
	return nil
}

// ParseStatus maps an unknown status to an INVALID_STATUS error.
func ParseStatus(value string) (domainDevice.Status, error) {
	status, err := domainDevice.ParseStatus(value)
	if err != nil {
		return "", appErrors.NewInvalidInput(appErrors.CodeInvalidStatus,
			"Status must be one of active, maintenance, inactive")
	}
	return status, nil
}

// parseOptionalDate treats nil and blank input as no date.
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(*value)
	if err != nil {
		return nil, appErrors.NewInvalidInput(appErrors.CodeValidation, field+" must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

// optionalText trims and sanitizes free text; blank input clears the field.
func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := utils.SanitizeText(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func technicianID(value *uint) *uint {
	if value == nil || *value == 0 {
		return nil
	}
	id := *value
	return &id
}
