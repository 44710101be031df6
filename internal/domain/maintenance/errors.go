package maintenance

import "errors"

var (
	ErrScheduleNotFound   = errors.New("maintenance schedule not found")
	ErrInvalidStatus      = errors.New("invalid maintenance schedule status")
	ErrOpenScheduleExists = errors.New("device already has an open maintenance schedule")
)
