package domain

import "fmt"

// Error types for consistent error handling across the engine.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrConfiguration indicates an invalid recurrence configuration: neither or
// both modes set, an anchor day outside 1-31, or an interval < 1. Fatal to
// the request, never retried.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("invalid recurrence configuration: %s", e.Reason)
}

// ErrPeriodNotConfigured indicates a period view was requested for a budget
// that has no recurrence mode configured. Surfaced to the caller as a
// precondition failure.
type ErrPeriodNotConfigured struct {
	BudgetID string
}

func (e *ErrPeriodNotConfigured) Error() string {
	return fmt.Sprintf("budget %s has no period configured", e.BudgetID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}
