package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// EntityKind identifies which kind of record an error refers to.
type EntityKind string

const (
	KindUser      EntityKind = "User"
	KindDriver    EntityKind = "Driver"
	KindPassenger EntityKind = "Passenger"
	KindRide      EntityKind = "Ride"
)

// NotFoundError means the referenced entity does not exist, or exists under
// a different role than the one the operation requires.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFound creates a NotFoundError for the given entity kind and id.
func NewNotFound(kind EntityKind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// AlreadyExistsError means a create was attempted with a duplicate id.
type AlreadyExistsError struct {
	Kind EntityKind
	ID   string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.ID)
}

// NewAlreadyExists creates an AlreadyExistsError for the given kind and id.
func NewAlreadyExists(kind EntityKind, id string) error {
	return &AlreadyExistsError{Kind: kind, ID: id}
}

// InvalidTransitionError means a ride lifecycle method was called outside
// its legal source state. The ride is left unchanged.
type InvalidTransitionError struct {
	CurrentStatus string
	Action        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a ride in status %s", e.Action, e.CurrentStatus)
}

// NewInvalidTransition creates an InvalidTransitionError.
func NewInvalidTransition(currentStatus, action string) error {
	return &InvalidTransitionError{CurrentStatus: currentStatus, Action: action}
}

// InvalidArgumentError means a caller-supplied value violates a domain rule
// (non-positive amount, out-of-range level, malformed email, ...).
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewInvalidArgument creates an InvalidArgumentError.
func NewInvalidArgument(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsAlreadyExists reports whether err is (or wraps) an AlreadyExistsError.
func IsAlreadyExists(err error) bool {
	var target *AlreadyExistsError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err is (or wraps) an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsInvalidArgument reports whether err is (or wraps) an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// HTTPStatus translates a domain error into the HTTP status code the
// handlers should respond with. Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsAlreadyExists(err):
		return http.StatusConflict
	case IsInvalidTransition(err):
		return http.StatusConflict
	case IsInvalidArgument(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
