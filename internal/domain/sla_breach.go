package domain

// SLABreach is a derived compliance record, recomputed on read for every task
// not in a terminal state. It is never stored as primary state.
type SLABreach struct {
	TaskID       string
	Department   Department
	IssueType    string
	Priority     TaskPriority
	SLAHours     float64
	ElapsedHours float64
	Breached     bool
}
