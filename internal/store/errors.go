package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when a registration collides with an
// existing account's email.
var ErrEmailTaken = errors.New("email already registered")

// ErrValidation is returned when a record is missing a required field.
var ErrValidation = errors.New("validation failed")
