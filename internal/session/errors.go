package session

import (
	"errors"
	"strings"
)

var (
	// ErrNotEditing is returned by form operations outside Creating or Editing.
	ErrNotEditing = errors.New("no item is being edited")
	// ErrUnknownSKU is returned when a SKU is not in the loaded catalog.
	ErrUnknownSKU = errors.New("unknown SKU")
	// ErrInsufficientStock is returned when an outbound movement would take
	// stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ValidationError lists the form fields that are missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}
