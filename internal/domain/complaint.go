package domain

import "time"

// LocationUnspecified is stored when a citizen omits the location.
const LocationUnspecified = "Not specified"

// Complaint is a citizen-submitted incident report, the intake unit. A
// complaint may fan out into one or more tasks.
type Complaint struct {
	ID          string
	Description string
	Location    string
	CreatedAt   time.Time
}
