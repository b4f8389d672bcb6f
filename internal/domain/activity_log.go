package domain

import "time"

// ActivityLogEntry is an immutable audit trail row. Exactly one entry is
// written per accepted transition, atomically with the status update. Entries
// for a task form a connected chain: each NewStatus is the next OldStatus.
type ActivityLogEntry struct {
	ID        string
	TaskID    string
	Timestamp time.Time
	ChangedBy string
	OldStatus TaskStatus
	NewStatus TaskStatus
	Remark    string
}
