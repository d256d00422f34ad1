package submission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helxplatform/eduhelx-student-ext/domain"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
)

type fakeAPI struct {
	mu       sync.Mutex
	snapshot domain.AssignmentSnapshot
	fetchErr error

	created   []createCall
	createErr error
}

type createCall struct {
	assignmentID int
	summary      string
	description  string
}

func (f *fakeAPI) FetchAssignments(ctx context.Context, path string) (domain.AssignmentSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return domain.AssignmentSnapshot{}, f.fetchErr
	}
	snap := f.snapshot
	snap.Path = path
	return snap, nil
}

func (f *fakeAPI) CreateSubmission(ctx context.Context, assignmentID int, summary, description string) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Submission{}, f.createErr
	}
	f.created = append(f.created, createCall{assignmentID, summary, description})
	return domain.Submission{ID: 99, AssignmentID: assignmentID, Summary: summary}, nil
}

func (f *fakeAPI) createCalls() []createCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]createCall(nil), f.created...)
}

func openAssignment(now time.Time) domain.Assignment {
	available := now.Add(-time.Hour)
	due := now.Add(time.Hour)
	return domain.Assignment{
		ID:                  7,
		Name:                "Homework 1",
		DirectoryPath:       "hw1",
		AdjustedAvailableAt: &available,
		AdjustedDueAt:       &due,
	}
}

func newService(api *fakeAPI, now time.Time) *Service {
	s := New(api, engine.New(nil, engine.Config{}, nil), nil)
	s.now = func() time.Time { return now }
	return s
}

func TestSubmitRequiresSummary(t *testing.T) {
	api := &fakeAPI{}
	s := newService(api, time.Now())

	_, err := s.Submit(context.Background(), "/work/hw1", "", "details")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	assert.Empty(t, api.createCalls())
}

func TestSubmitOutsideClassRepo(t *testing.T) {
	api := &fakeAPI{snapshot: domain.AssignmentSnapshot{InClassRepo: false}}
	s := newService(api, time.Now())

	_, err := s.Submit(context.Background(), "/scratch", "done", "")
	assert.ErrorIs(t, err, domain.ErrNotInClassRepo)
	assert.EqualError(t, err, "not in student's class repository")
}

func TestSubmitNotInAssignmentDirectory(t *testing.T) {
	api := &fakeAPI{snapshot: domain.AssignmentSnapshot{InClassRepo: true}}
	s := newService(api, time.Now())

	_, err := s.Submit(context.Background(), "/work", "done", "")
	assert.ErrorIs(t, err, domain.ErrNotInAssignment)
	assert.EqualError(t, err, "not in an assignment directory")
}

func TestSubmitBeforeAvailable(t *testing.T) {
	now := time.Now()
	a := openAssignment(now)
	early := now.Add(time.Hour)
	a.AdjustedAvailableAt = &early
	api := &fakeAPI{snapshot: domain.AssignmentSnapshot{InClassRepo: true, Current: &a}}
	s := newService(api, now)

	_, err := s.Submit(context.Background(), "/work/hw1", "done", "")
	assert.ErrorIs(t, err, domain.ErrNotAvailableYet)
	assert.Empty(t, api.createCalls())
}

func TestSubmitPastDue(t *testing.T) {
	now := time.Now()
	a := openAssignment(now)
	past := now.Add(-time.Minute)
	a.AdjustedDueAt = &past
	api := &fakeAPI{snapshot: domain.AssignmentSnapshot{InClassRepo: true, Current: &a}}
	s := newService(api, now)

	_, err := s.Submit(context.Background(), "/work/hw1", "done", "")
	assert.ErrorIs(t, err, domain.ErrPastDue)
	assert.EqualError(t, err, "assignment is past due")
	assert.Empty(t, api.createCalls())
}

func TestSubmitExactlyAtDueIsClosed(t *testing.T) {
	now := time.Now()
	a := openAssignment(now)
	a.AdjustedDueAt = &now
	api := &fakeAPI{snapshot: domain.AssignmentSnapshot{InClassRepo: true, Current: &a}}
	s := newService(api, now)

	_, err := s.Submit(context.Background(), "/work/hw1", "done", "")
	assert.ErrorIs(t, err, domain.ErrPastDue)
}

func TestSubmitUnscheduledAssignment(t *testing.T) {
	now := time.Now()
	a := domain.Assignment{ID: 7, Name: "Homework 1", DirectoryPath: "hw1"}
	api := &fakeAPI{snapshot: domain.AssignmentSnapshot{InClassRepo: true, Current: &a}}
	s := newService(api, now)

	// No adjusted dates set means the assignment is not available yet.
	_, err := s.Submit(context.Background(), "/work/hw1", "done", "")
	assert.ErrorIs(t, err, domain.ErrNotAvailableYet)
}

func TestSubmitSuccess(t *testing.T) {
	now := time.Now()
	a := openAssignment(now)
	api := &fakeAPI{snapshot: domain.AssignmentSnapshot{InClassRepo: true, Current: &a}}
	s := newService(api, now)

	created, err := s.Submit(context.Background(), "/work/hw1", "finished part 2", "see notebook")
	require.NoError(t, err)
	assert.Equal(t, 99, created.ID)

	calls := api.createCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 7, calls[0].assignmentID)
	assert.Equal(t, "finished part 2", calls[0].summary)
	assert.Equal(t, "see notebook", calls[0].description)
}

func TestSubmitFetchFailurePropagates(t *testing.T) {
	api := &fakeAPI{fetchErr: domain.NewError(domain.ErrCodeTransport, "grader api unreachable")}
	s := newService(api, time.Now())

	_, err := s.Submit(context.Background(), "/work/hw1", "done", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeTransport))
	assert.Empty(t, api.createCalls())
}
