package domain

import "time"

// Submission records one graded hand-in of an assignment.
type Submission struct {
	ID           int       `json:"id"`
	AssignmentID int       `json:"assignment_id"`
	CommitID     string    `json:"commit_id"`
	Summary      string    `json:"summary"`
	Description  string    `json:"description,omitempty"`
	SubmittedAt  time.Time `json:"submission_time"`
}
