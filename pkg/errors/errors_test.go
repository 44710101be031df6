package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	plain := NewAppError(CodeDeviceExists, "Device with this serial number already exists", nil)
	assert.Equal(t, "Device with this serial number already exists", plain.Error())

	wrapped := NewAppError("DB", "failed to save", errors.New("connection reset"))
	assert.Equal(t, "failed to save: connection reset", wrapped.Error())
}

func TestNotFoundAndInvalidInputMatching(t *testing.T) {
	nf := fmt.Errorf("loading device: %w", NewNotFound("Device not found"))
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsInvalidInput(nf))

	var appErr *AppError
	assert.True(t, errors.As(nf, &appErr))
	assert.Equal(t, CodeNotFound, appErr.Code)

	inv := NewInvalidInput(CodeInvalidDates, "Warranty expiry date cannot be earlier than purchase date")
	assert.True(t, IsInvalidInput(inv))
	assert.False(t, IsNotFound(inv))
}
