//go:build !linux

package coop

// NewOSClock falls back to the portable clock on hosts without an eventfd
// idle shim.
func NewOSClock() (Clock, error) {
	return NewClock(), nil
}
