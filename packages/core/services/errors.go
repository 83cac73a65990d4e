package services

import (
	"errors"
	"fmt"

	"foosilator/packages/core/utils"

	"gorm.io/gorm"
)

// Error kinds shared by services and mapped to HTTP statuses by the handlers.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("requested resource not found")
	ErrNotLatestMatch  = errors.New("cannot delete a match that is not the latest match for that league")
	ErrStore           = errors.New("store operation failed")
	ErrForbidden       = errors.New("operation not allowed for the current user")
	ErrInvalidPassword = errors.New("invalid league password")
	ErrAccessRequired  = errors.New("league password required")
)

// ValidationError reports malformed or out-of-range input. Nothing has been written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing player, league or match.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotLatestMatchError is returned when reversing a match that has later matches on top of it.
type NotLatestMatchError struct {
	MatchID  uint
	LatestID uint
}

func (e *NotLatestMatchError) Error() string {
	return fmt.Sprintf("%s (match %d, latest %d)", ErrNotLatestMatch.Error(), e.MatchID, e.LatestID)
}

func (e *NotLatestMatchError) Is(target error) bool {
	return target == ErrNotLatestMatch
}

// StoreError wraps a failure of the underlying database.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// storeErr leaves taxonomy errors untouched and wraps everything else.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		validation *ValidationError
		notFound   *NotFoundError
		notLatest  *NotLatestMatchError
		store      *StoreError
		rating     *utils.InvalidRatingError
	)
	if errors.As(err, &validation) || errors.As(err, &notFound) || errors.As(err, &notLatest) ||
		errors.As(err, &store) || errors.As(err, &rating) {
		return err
	}
	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrInvalidPassword) || errors.Is(err, ErrAccessRequired) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// lookupErr turns gorm.ErrRecordNotFound into a NotFoundError.
func lookupErr(op, resource string, id any, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return storeErr(op, err)
}
