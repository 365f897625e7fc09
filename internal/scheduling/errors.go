package scheduling

import (
	"errors"
	"strings"
)

// Error kinds. Match with errors.Is.
var (
	ErrInvalidDoctor    = errors.New("scheduling: invalid doctor")
	ErrInvalidService   = errors.New("scheduling: invalid service")
	ErrInvalidFormat    = errors.New("scheduling: invalid format")
	ErrInThePast        = errors.New("scheduling: requested time is in the past")
	ErrSlotTaken        = errors.New("scheduling: slot taken")
	ErrStoreUnavailable = errors.New("scheduling: calendar store unavailable")
	ErrNotFound         = errors.New("scheduling: appointment not found")
)

const (
	msgInvalidService   = "Invalid service selection."
	msgInvalidFormat    = "Invalid date or time format. Please use YYYY-MM-DD for the date and HH:MM for the time."
	msgInThePast        = "That time has already passed. Please choose a future date and time."
	msgStoreUnavailable = "I couldn't reach the clinic calendar right now. Please try again in a moment."
	msgNotFound         = "I could not find an appointment with that ID."
	msgGeneric          = "Sorry, something went wrong. Please try again."
)

// Error carries a caller-facing message alongside the error kind and the
// underlying technical cause. Message is safe to speak to a caller; Err is not.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// CallerMessage returns the text that can be relayed to the caller for err.
// Technical detail is never included.
func CallerMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	switch {
	case errors.Is(err, ErrInvalidDoctor):
		return "Invalid doctor selection."
	case errors.Is(err, ErrInvalidService):
		return msgInvalidService
	case errors.Is(err, ErrInvalidFormat):
		return msgInvalidFormat
	case errors.Is(err, ErrInThePast):
		return msgInThePast
	case errors.Is(err, ErrSlotTaken):
		return "That doctor is not available at this time. Please choose another slot."
	case errors.Is(err, ErrStoreUnavailable):
		return msgStoreUnavailable
	case errors.Is(err, ErrNotFound):
		return msgNotFound
	}
	return msgGeneric
}

// KindName is a short label for err, used for metrics and logs.
func KindName(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidDoctor):
		return "invalid_doctor"
	case errors.Is(err, ErrInvalidService):
		return "invalid_service"
	case errors.Is(err, ErrInvalidFormat):
		return "invalid_format"
	case errors.Is(err, ErrInThePast):
		return "in_the_past"
	case errors.Is(err, ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "error"
}
