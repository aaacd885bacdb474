//go:build !linux

package gpio

// RealChip is not available on non-Linux platforms.
type RealChip struct{}

// NewRealChip returns ErrNotSupported on non-Linux platforms.
func NewRealChip(name string, activeLow bool) (*RealChip, error) {
	return nil, ErrNotSupported
}

// RequestOutput is not implemented on non-Linux platforms.
func (c *RealChip) RequestOutput(offset int) (Output, error) {
	return nil, ErrNotSupported
}

// Close is not implemented on non-Linux platforms.
func (c *RealChip) Close() error {
	return nil
}
