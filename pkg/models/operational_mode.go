package models

import "fmt"

// OperationalMode is the system-wide strategy governing which allocation
// algorithm the engine runs.
type OperationalMode string

const (
	ModeSingleVendor OperationalMode = "single_vendor"
	ModeMultiVendor  OperationalMode = "multi_vendor"
	ModeHybrid       OperationalMode = "hybrid"
)

// ParseOperationalMode rejects anything outside the three recognized modes.
func ParseOperationalMode(s string) (OperationalMode, error) {
	switch OperationalMode(s) {
	case ModeSingleVendor, ModeMultiVendor, ModeHybrid:
		return OperationalMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Flags returns the dependent feature toggles for the mode:
//
//	single_vendor: multi_vendor=false dark_store=false
//	multi_vendor:  multi_vendor=true  dark_store=false
//	hybrid:        multi_vendor=true  dark_store=true
func (m OperationalMode) Flags() (multiVendorEnabled bool, darkStoreEnabled bool) {
	switch m {
	case ModeMultiVendor:
		return true, false
	case ModeHybrid:
		return true, true
	default:
		return false, false
	}
}
