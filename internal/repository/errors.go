package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStatusConflict is returned when an optimistic status update loses
	// the race: the ride's status no longer matches what the caller read.
	ErrStatusConflict = errors.New("ride status changed concurrently")
)
