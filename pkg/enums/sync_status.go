package enums

// SyncStatus is the lifecycle state of one sync attempt. Terminal states
// are never rewritten once recorded.
type SyncStatus string

const (
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

// String implements fmt.Stringer.
func (s SyncStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status ends the attempt's lifecycle.
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusCompleted || s == SyncStatusFailed
}
