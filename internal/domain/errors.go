package domain

import (
	"errors"
	"fmt"
)

// Code is the machine-checkable kind carried by every reported error.
type Code string

const (
	CodeValidation                Code = "VALIDATION_ERROR"
	CodeNotFound                  Code = "NOT_FOUND"
	CodeConflict                  Code = "CONFLICT"
	CodeInternal                  Code = "INTERNAL_ERROR"
	CodeSeatConflict              Code = "SEAT_CONFLICT"
	CodeDuplicateBooking          Code = "DUPLICATE_BOOKING"
	CodeInsufficientSeats         Code = "INSUFFICIENT_SEATS"
	CodeNoSeatsAvailable          Code = "NO_SEATS_AVAILABLE"
	CodeSeatNotAvailable          Code = "SEAT_NOT_AVAILABLE"
	CodeInvalidSeatForClass       Code = "INVALID_SEAT_FOR_CLASS"
	CodeTrainUnavailable          Code = "TRAIN_UNAVAILABLE"
	CodeTrainNotFound             Code = "TRAIN_NOT_FOUND"
	CodeTicketNotFound            Code = "TICKET_NOT_FOUND"
	CodeBookingNotFound           Code = "BOOKING_NOT_FOUND"
	CodeAllocationFailed          Code = "ALLOCATION_FAILED"
	CodePaymentVerificationFailed Code = "PAYMENT_VERIFICATION_FAILED"
	CodeRefundFailed              Code = "REFUND_FAILED"
	CodeStrandedBookings          Code = "STRANDED_BOOKINGS"
)

type coded interface {
	ErrorCode() Code
}

// CodeOf returns the code of the first coded error in err's chain.
func CodeOf(err error) Code {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

type NotFoundError struct {
	Resource string
	Code     Code
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

func (e NotFoundError) ErrorCode() Code {
	if e.Code == "" {
		return CodeNotFound
	}
	return e.Code
}

type ValidationError struct {
	Field string
	Msg   string
	Code  Code
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

func (e ValidationError) ErrorCode() Code {
	if e.Code == "" {
		return CodeValidation
	}
	return e.Code
}

type ConflictError struct {
	Resource string
	Msg      string
	Code     Code
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

func (e ConflictError) ErrorCode() Code {
	if e.Code == "" {
		return CodeConflict
	}
	return e.Code
}

// CapacityError reports that a class cannot hold the request. Remaining is
// the number of seats that were still free when the check ran.
type CapacityError struct {
	Msg       string
	Code      Code
	Remaining int
}

func (e CapacityError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("insufficient seats: %d remaining", e.Remaining)
}

func (e CapacityError) ErrorCode() Code {
	if e.Code == "" {
		return CodeInsufficientSeats
	}
	return e.Code
}

// UpstreamError wraps a failed call to an out-of-process collaborator.
type UpstreamError struct {
	Service string
	Msg     string
	Code    Code
	Err     error
}

func (e UpstreamError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Service != "" {
		return fmt.Sprintf("%s unavailable", e.Service)
	}
	return "upstream failure"
}

func (e UpstreamError) Unwrap() error { return e.Err }

func (e UpstreamError) ErrorCode() Code { return e.Code }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func (e InternalError) ErrorCode() Code { return CodeInternal }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsCapacity(err error) bool {
	var target CapacityError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target UpstreamError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// IsSeatConflict reports a lost race on the seat ledger's unique key.
func IsSeatConflict(err error) bool {
	return HasCode(err, CodeSeatConflict)
}
