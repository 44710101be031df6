package device

import "errors"

var (
	ErrDeviceNotFound      = errors.New("device not found")
	ErrDeviceAlreadyExists = errors.New("device with this serial number already exists")
	ErrInvalidStatus       = errors.New("invalid device status")
	ErrInvalidWarranty     = errors.New("warranty expiry date cannot be earlier than purchase date")
)
