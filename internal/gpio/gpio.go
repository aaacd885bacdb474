// Package gpio drives digital output lines with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "errors"

// Output is a single binary output line.
type Output interface {
	// DriveActive sets the line to its active level.
	DriveActive() error

	// DriveInactive sets the line to its inactive level.
	DriveInactive() error

	// Close releases the line.
	Close() error
}

// Chip hands out output lines.
type Chip interface {
	// RequestOutput configures offset as an output line.
	RequestOutput(offset int) (Output, error)

	// Close releases the chip.
	Close() error
}

// Defaults (BCM numbering on a Raspberry Pi).
const (
	DefaultChip = "gpiochip0"
	DefaultPinA = 4  // primary, toggled every period
	DefaultPinB = 18 // secondary, toggled on each falling edge of A
)

// Consumer is the label the kernel shows for lines held by this process.
const Consumer = "pin-blinker"

// ErrNotSupported is returned when GPIO is not available on this platform.
var ErrNotSupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Drive sets out to the given logical level.
func Drive(out Output, active bool) error {
	if active {
		return out.DriveActive()
	}
	return out.DriveInactive()
}
