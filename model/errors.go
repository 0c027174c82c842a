package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure modes handlers need to tell apart.
var (
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrNotFound             = errors.New("not found")
	ErrSubscriptionRequired = errors.New("active subscription required")
	ErrAlreadySigned        = errors.New("contract has already been signed")
	ErrNotReadyToSign       = errors.New("contract has not been sent for signature")
	ErrContractCancelled    = errors.New("contract has been cancelled")
)

// ValidationError reports the fields that were missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// NewValidationError builds a ValidationError from field names.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// TransitionError reports a status change the state machine does not allow.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition: %s -> %s", e.Entity, e.From, e.To)
}

// Service names used in ExternalError.
const (
	ServiceStorage  = "storage"
	ServiceRenderer = "renderer"
	ServiceStripe   = "stripe"
	ServiceIPLookup = "iplookup"
)

// ExternalError wraps a failure from a collaborator outside the entity store.
type ExternalError struct {
	Service string
	Err     error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}
