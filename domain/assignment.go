package domain

import "time"

// Assignment is a student's view of one assignment, personalized with any
// deferral or extension the instructor granted them. Instances are immutable:
// each successful fetch constructs a fresh value and replaces the previous one
// wholesale, so a reader can never observe a half-updated assignment.
type Assignment struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	DirectoryPath string `json:"directory_path"`
	// AbsoluteDirectoryPath is the path the web UI uses to open the
	// assignment. It is rooted at the server's working directory, which the
	// UI treats as "/"; it is not an absolute path on the server host.
	AbsoluteDirectoryPath string `json:"absolute_directory_path"`

	CreatedAt      time.Time `json:"created_date"`
	LastModifiedAt time.Time `json:"last_modified_date"`

	// Base dates set on the assignment itself, before per-student overrides.
	AvailableAt *time.Time `json:"available_date"`
	DueAt       *time.Time `json:"due_date"`
	// Adjusted dates after applying the viewer's deferral/extension.
	// Nil means the instructor has not scheduled the assignment yet.
	AdjustedAvailableAt *time.Time `json:"adjusted_available_date"`
	AdjustedDueAt       *time.Time `json:"adjusted_due_date"`

	// Submissions is only populated on the assignment bound to the current
	// working path. Nil means unknown, an empty slice means none exist.
	Submissions []Submission `json:"submissions,omitempty"`
}

// Status holds the lifecycle facets derived from an assignment's dates at a
// given instant. It is recomputed on every read so it can never go stale
// independently of the clock.
type Status struct {
	IsCreated   bool `json:"is_created"`
	IsAvailable bool `json:"is_available"`
	IsClosed    bool `json:"is_closed"`
	IsDeferred  bool `json:"is_deferred"`
	IsExtended  bool `json:"is_extended"`
}

// IsCreated reports whether the assignment has been scheduled, i.e. both
// adjusted dates are set. Clearing either date on the server flips this back
// to false on the next fetch; the client never infers dates locally.
func (a Assignment) IsCreated() bool {
	return a.AdjustedAvailableAt != nil && a.AdjustedDueAt != nil
}

// IsAvailableAt reports whether the assignment is open for work at now.
func (a Assignment) IsAvailableAt(now time.Time) bool {
	return a.IsCreated() && !now.Before(*a.AdjustedAvailableAt)
}

// IsClosedAt reports whether the assignment's due date has passed at now.
// Dates are validated due >= available, so closed implies available.
func (a Assignment) IsClosedAt(now time.Time) bool {
	return a.IsCreated() && !now.Before(*a.AdjustedDueAt)
}

// IsDeferred reports whether the viewer's available date was pushed past the
// assignment's base available date.
func (a Assignment) IsDeferred() bool {
	return a.AvailableAt != nil && a.AdjustedAvailableAt != nil &&
		!a.AdjustedAvailableAt.Equal(*a.AvailableAt)
}

// IsExtended reports whether the viewer's due date differs from the base one.
func (a Assignment) IsExtended() bool {
	return a.DueAt != nil && a.AdjustedDueAt != nil &&
		!a.AdjustedDueAt.Equal(*a.DueAt)
}

// StatusAt derives all lifecycle facets at once.
func (a Assignment) StatusAt(now time.Time) Status {
	return Status{
		IsCreated:   a.IsCreated(),
		IsAvailable: a.IsAvailableAt(now),
		IsClosed:    a.IsClosedAt(now),
		IsDeferred:  a.IsDeferred(),
		IsExtended:  a.IsExtended(),
	}
}

// ActiveSubmission returns the most recent submission, or nil when the
// assignment has none (or its submissions are unknown).
func (a Assignment) ActiveSubmission() *Submission {
	var active *Submission
	for i := range a.Submissions {
		s := &a.Submissions[i]
		if active == nil || s.SubmittedAt.After(active.SubmittedAt) {
			active = s
		}
	}
	return active
}

// ValidateDates rejects a date pair where the due date precedes the available
// date. Used both when converting server responses and before sending edits.
func ValidateDates(availableAt, dueAt *time.Time) error {
	if availableAt == nil || dueAt == nil {
		return nil
	}
	if dueAt.Before(*availableAt) {
		return NewError(ErrCodeValidation, "due date must not precede available date")
	}
	return nil
}
