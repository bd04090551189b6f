package enums

import "fmt"

// SyncMode controls how a branch consumes master catalog versions.
type SyncMode string

const (
	SyncModeAuto     SyncMode = "auto"
	SyncModeManual   SyncMode = "manual"
	SyncModeDisabled SyncMode = "disabled"
)

var validSyncModes = []SyncMode{
	SyncModeAuto,
	SyncModeManual,
	SyncModeDisabled,
}

// String implements fmt.Stringer.
func (m SyncMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known SyncMode.
func (m SyncMode) IsValid() bool {
	for _, candidate := range validSyncModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseSyncMode converts raw input into a SyncMode.
func ParseSyncMode(value string) (SyncMode, error) {
	for _, candidate := range validSyncModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync mode %q", value)
}
