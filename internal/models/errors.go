package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests no meaningful score can be computed for.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration marks broken weight or reference tables. Fatal at startup.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNotFound is returned by storage lookups with no matching row.
	ErrNotFound = errors.New("not found")
)

// PillarError represents a per-pillar failure that was absorbed by substituting the
// neutral default score.
type PillarError struct {
	Pillar PillarName `json:"pillar"`
	Err    error      `json:"-"`
}

func (e PillarError) Error() string {
	return fmt.Sprintf("pillar %s failed: %v", e.Pillar, e.Err)
}

func (e PillarError) Unwrap() error {
	return e.Err
}
