package trade

import "errors"

var (
	ErrNotFound           = errors.New("transaction not found")
	ErrDuplicateKey       = errors.New("transaction id already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrValidation         = errors.New("validation failed")
)
