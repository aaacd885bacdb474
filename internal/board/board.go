// Package board brings up the two output lines and runs the control tasks.
//
// Startup order is fixed: configure A, clear A, configure B, clear B, start
// the toggler, start the reporter. Any failure in that sequence, or any
// failure to drive a line afterwards, is a FatalError carrying the process
// exit status.
package board

import (
	"errors"
	"fmt"

	"github.com/sweeney/pin-blinker/internal/gpio"
)

// Exit statuses for fatal hardware errors.
const (
	CodeOpenChip   = 9
	CodeConfigureA = 10
	CodeClearA     = 11
	CodeConfigureB = 12
	CodeClearB     = 13
	CodeDrive      = 20
)

// FatalError is a hardware configuration or driver failure. It is never
// retried; the process exits with Code.
type FatalError struct {
	Step string
	Code int
	Err  error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s (status %d): %v", e.Step, e.Code, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// ExitCode returns the status to exit with for err: the FatalError code if
// err wraps one, 1 for any other error, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return 1
}

// Board holds the two configured output lines.
type Board struct {
	A gpio.Output
	B gpio.Output
}

// Init configures pinA and pinB as outputs and drives both inactive, in
// that order. On failure, lines already requested are released.
func Init(chip gpio.Chip, pinA, pinB int) (*Board, error) {
	a, err := chip.RequestOutput(pinA)
	if err != nil {
		return nil, &FatalError{Step: fmt.Sprintf("configure output A (pin %d)", pinA), Code: CodeConfigureA, Err: err}
	}
	if err := a.DriveInactive(); err != nil {
		a.Close()
		return nil, &FatalError{Step: fmt.Sprintf("clear output A (pin %d)", pinA), Code: CodeClearA, Err: err}
	}

	b, err := chip.RequestOutput(pinB)
	if err != nil {
		a.Close()
		return nil, &FatalError{Step: fmt.Sprintf("configure output B (pin %d)", pinB), Code: CodeConfigureB, Err: err}
	}
	if err := b.DriveInactive(); err != nil {
		b.Close()
		a.Close()
		return nil, &FatalError{Step: fmt.Sprintf("clear output B (pin %d)", pinB), Code: CodeClearB, Err: err}
	}

	return &Board{A: a, B: b}, nil
}

// Close drives both lines inactive and releases them.
func (b *Board) Close() error {
	var errs []error
	for _, out := range []gpio.Output{b.A, b.B} {
		if err := out.DriveInactive(); err != nil {
			errs = append(errs, err)
		}
		if err := out.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
