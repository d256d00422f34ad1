package transport

import "encoding/json"

// SubmitRequest creates a submission for the assignment containing CurrentPath.
type SubmitRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	CurrentPath string `json:"current_path"`
}

// UpdateAssignmentRequest edits a single assignment field. The value stays
// raw so the edit service can type-check it per field.
type UpdateAssignmentRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}
