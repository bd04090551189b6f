package enums

import "fmt"

// SyncTrigger identifies what initiated a sync attempt.
type SyncTrigger string

const (
	SyncTriggerManual SyncTrigger = "manual"
	SyncTriggerAuto   SyncTrigger = "auto"
	SyncTriggerBulk   SyncTrigger = "bulk"
)

var validSyncTriggers = []SyncTrigger{
	SyncTriggerManual,
	SyncTriggerAuto,
	SyncTriggerBulk,
}

// String implements fmt.Stringer.
func (t SyncTrigger) String() string {
	return string(t)
}

// IsValid reports whether the value is a known SyncTrigger.
func (t SyncTrigger) IsValid() bool {
	for _, candidate := range validSyncTriggers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSyncTrigger converts raw input into a SyncTrigger.
func ParseSyncTrigger(value string) (SyncTrigger, error) {
	for _, candidate := range validSyncTriggers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync trigger %q", value)
}
