package domain

import "errors"

var (
	// ErrInvalidBlueprint marks blueprint validation failures.
	ErrInvalidBlueprint = errors.New("invalid blueprint")

	// ErrNotFound is returned when a workbench id matches nothing.
	ErrNotFound = errors.New("workbench not found")
)
