package errs

import "errors"

var (
	ErrDeviceNotFound     error = errors.New("device not found")
	ErrAlertNotFound      error = errors.New("alert not found")
	ErrAlertInvalidStatus error = errors.New("alert status does not allow this operation")
)
