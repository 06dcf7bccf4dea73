package models

import "errors"

// Common errors for credential store operations.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists")
)
