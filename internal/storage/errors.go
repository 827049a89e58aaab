package storage

import "errors"

var (
	ErrAccountExists = errors.New("account already exists")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
)
