//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealChip requests output lines from a Linux GPIO character device.
type RealChip struct {
	chip      *gpiocdev.Chip
	activeLow bool
}

// NewRealChip opens the named chip, e.g. "gpiochip0".
// With activeLow set, the active level is a low line.
func NewRealChip(name string, activeLow bool) (*RealChip, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &RealChip{chip: chip, activeLow: activeLow}, nil
}

// RequestOutput requests offset as an output, initially inactive.
func (c *RealChip) RequestOutput(offset int) (Output, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if c.activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}

	line, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", offset, err)
	}
	return &RealOutput{line: line, offset: offset}, nil
}

// Close releases the chip. Lines must be closed separately.
func (c *RealChip) Close() error {
	if err := c.chip.Close(); err != nil {
		return fmt.Errorf("close chip: %w", err)
	}
	return nil
}

// RealOutput is one requested output line.
type RealOutput struct {
	line   *gpiocdev.Line
	offset int
}

// DriveActive sets the line active.
func (o *RealOutput) DriveActive() error {
	if err := o.line.SetValue(1); err != nil {
		return fmt.Errorf("drive pin %d active: %w", o.offset, err)
	}
	return nil
}

// DriveInactive sets the line inactive.
func (o *RealOutput) DriveInactive() error {
	if err := o.line.SetValue(0); err != nil {
		return fmt.Errorf("drive pin %d inactive: %w", o.offset, err)
	}
	return nil
}

// Close reverts the line to an input before releasing it, so nothing is
// left driven after the process exits.
func (o *RealOutput) Close() error {
	var errs []error

	if err := o.line.Reconfigure(gpiocdev.AsInput); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", o.offset, err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", o.offset, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
