package grader

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/helxplatform/eduhelx-student-ext/domain"
	"github.com/helxplatform/eduhelx-student-ext/internal/classrepo"
)

// FetchAssignments returns the assignment snapshot for one working path: the
// personalized assignment list plus, when the path sits inside an assignment
// directory, that assignment with its submissions attached.
func (c *Client) FetchAssignments(ctx context.Context, path string) (domain.AssignmentSnapshot, error) {
	snapshot := domain.AssignmentSnapshot{Path: path}

	var cw courseWire
	if err := c.get(ctx, "/course", nil, &cw); err != nil {
		return snapshot, err
	}
	var aws []assignmentWire
	if err := c.get(ctx, "/assignments/self", nil, &aws); err != nil {
		return snapshot, err
	}

	repo := classrepo.New(cw.toDomain(), c.cwd)

	assignments := make([]domain.Assignment, 0, len(aws))
	for _, aw := range aws {
		a, err := aw.toDomain()
		if err != nil {
			return snapshot, err
		}
		// The UI can only open files under the working directory, so the
		// "absolute" path is rooted there, not on the host filesystem.
		a.AbsoluteDirectoryPath = repo.UIPath(a, c.cwd)
		assignments = append(assignments, a)
	}
	snapshot.Assignments = assignments

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(c.cwd, abs)
	}
	if !repo.Contains(abs) {
		// Outside the class repository: the list is still useful, there is
		// just no current assignment to bind submissions to.
		return snapshot, nil
	}
	snapshot.InClassRepo = true

	current := repo.CurrentAssignment(assignments, abs)
	if current == nil {
		return snapshot, nil
	}

	submissions, err := c.fetchSubmissions(ctx, current.ID)
	if err != nil {
		return snapshot, err
	}
	// Attach submissions to a copy so the list entries stay submission-free.
	withSubs := *current
	withSubs.Submissions = submissions
	snapshot.Current = &withSubs
	return snapshot, nil
}

func (c *Client) fetchSubmissions(ctx context.Context, assignmentID int) ([]domain.Submission, error) {
	query := url.Values{"assignment_id": []string{strconv.Itoa(assignmentID)}}
	var sws []submissionWire
	if err := c.get(ctx, "/submissions/self", query, &sws); err != nil {
		return nil, err
	}
	submissions := make([]domain.Submission, 0, len(sws))
	for _, sw := range sws {
		submissions = append(submissions, sw.toDomain())
	}
	return submissions, nil
}

// CreateSubmission hands in the current state of an assignment. One-shot;
// the synchronization engine is not involved.
func (c *Client) CreateSubmission(ctx context.Context, assignmentID int, summary, description string) (domain.Submission, error) {
	in := map[string]interface{}{
		"assignment_id": assignmentID,
		"summary":       summary,
	}
	if description != "" {
		in["description"] = description
	}
	var sw submissionWire
	if err := c.post(ctx, "/submissions", in, &sw); err != nil {
		return domain.Submission{}, err
	}
	return sw.toDomain(), nil
}

// UpdateAssignmentField patches a single editable field on an assignment.
// The value is sent as-is; nil clears the field on the server.
func (c *Client) UpdateAssignmentField(ctx context.Context, assignmentID int, field string, value interface{}) error {
	in := map[string]interface{}{field: value}
	return c.patch(ctx, fmt.Sprintf("/assignments/%d", assignmentID), in, nil)
}
