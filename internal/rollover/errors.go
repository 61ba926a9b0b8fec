package rollover

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrEmptySchedule    = errors.New("empty schedule")
	ErrScheduleOrder    = errors.New("expiry schedule not sorted by expiry")
	ErrScheduleConflict = errors.New("expiry schedule conflict")
	ErrContractMismatch = errors.New("contracts do not match schedule")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrWindowOverlap    = errors.New("rollover window overlaps previous contract")
)

// ScheduleError describes why a chain was rejected
type ScheduleError struct {
	Kind     error
	Contract string // offending contract, empty when not specific
	Message  string
}

func (e *ScheduleError) Error() string {
	if e.Contract != "" {
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Contract, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Unwrap exposes the kind to errors.Is
func (e *ScheduleError) Unwrap() error {
	return e.Kind
}

func newError(kind error, contract, format string, args ...interface{}) error {
	return &ScheduleError{
		Kind:     kind,
		Contract: contract,
		Message:  fmt.Sprintf(format, args...),
	}
}
