package assignment

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helxplatform/eduhelx-student-ext/domain"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
)

type updateCall struct {
	assignmentID int
	field        string
	value        interface{}
}

type fakeAPI struct {
	mu      sync.Mutex
	calls   []updateCall
	respond error
	// rejectFrom rejects calls numbered >= it (1-based) when positive.
	rejectFrom int
}

func (f *fakeAPI) UpdateAssignmentField(ctx context.Context, assignmentID int, field string, value interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, updateCall{assignmentID, field, value})
	if f.respond != nil {
		return f.respond
	}
	if f.rejectFrom > 0 && len(f.calls) >= f.rejectFrom {
		return domain.NewError(domain.ErrCodeTransport, "grader api request failed")
	}
	return nil
}

func (f *fakeAPI) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.calls...)
}

// fakeFetcher serves a fixed snapshot so the engine's assignment slot can be
// seeded through the normal poll path.
type fakeFetcher struct {
	mu       sync.Mutex
	snapshot domain.AssignmentSnapshot
}

func (f *fakeFetcher) FetchAssignments(ctx context.Context, path string) (domain.AssignmentSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshot
	snap.Assignments = append([]domain.Assignment(nil), f.snapshot.Assignments...)
	if f.snapshot.Current != nil {
		current := *f.snapshot.Current
		snap.Current = &current
	}
	snap.Path = path
	return snap, nil
}

// rename updates the served assignment name, mirroring a write the grader
// accepted.
func (f *fakeFetcher) rename(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignments := append([]domain.Assignment(nil), f.snapshot.Assignments...)
	for i := range assignments {
		assignments[i].Name = name
	}
	f.snapshot.Assignments = assignments
	if f.snapshot.Current != nil {
		current := *f.snapshot.Current
		current.Name = name
		f.snapshot.Current = &current
	}
}

func (f *fakeFetcher) FetchCourseAndStudent(ctx context.Context) (domain.CourseSnapshot, error) {
	return domain.CourseSnapshot{}, nil
}

func (f *fakeFetcher) FetchInstructorAndRoster(ctx context.Context) (domain.RosterSnapshot, error) {
	return domain.RosterSnapshot{}, nil
}

// manualScheduler collects scheduled trailing fires so tests decide when the
// debounce window elapses.
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (m *manualScheduler) schedule(d time.Duration, fn func()) engine.CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, fn)
	return func() {}
}

func (m *manualScheduler) fireAll() {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition never held: %s", msg)
}

func baseSnapshot() domain.AssignmentSnapshot {
	available := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	a := domain.Assignment{
		ID:                  7,
		Name:                "Homework 1",
		DirectoryPath:       "hw1",
		AdjustedAvailableAt: &available,
		AdjustedDueAt:       &due,
	}
	current := a
	return domain.AssignmentSnapshot{
		InClassRepo: true,
		Assignments: []domain.Assignment{a},
		Current:     &current,
	}
}

// newFixture starts an engine whose assignment slot holds the fetcher's
// snapshot and wires an edit service with a manually driven debouncer.
func newFixture(t *testing.T, api *fakeAPI) (*Service, *engine.Engine, *manualScheduler) {
	svc, eng, sched, _ := newFixtureWithFetcher(t, api)
	return svc, eng, sched
}

func newFixtureWithFetcher(t *testing.T, api *fakeAPI) (*Service, *engine.Engine, *manualScheduler, *fakeFetcher) {
	t.Helper()

	fetcher := &fakeFetcher{snapshot: baseSnapshot()}
	eng := engine.New(fetcher, engine.Config{
		AssignmentPollInterval: time.Hour,
		CoursePollInterval:     time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	eng.Start(ctx)
	eng.SetPath("/work/hw1")
	waitFor(t, func() bool {
		_, ok := eng.AssignmentSnapshot()
		return ok
	}, "assignment slot seeded")

	sched := &manualScheduler{}
	fixed := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	deb := engine.NewDebouncerWithClock(time.Second, func() time.Time { return fixed }, sched.schedule)
	svc := NewWithDebouncer(api, eng, deb, nil)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, eng, sched, fetcher
}

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func currentName(eng *engine.Engine) string {
	snap, ok := eng.AssignmentSnapshot()
	if !ok || len(snap.Assignments) == 0 {
		return ""
	}
	return snap.Assignments[0].Name
}

func TestUpdateFieldRejectsUneditableField(t *testing.T) {
	api := &fakeAPI{}
	svc, _, _ := newFixture(t, api)

	err := svc.UpdateField(7, "directory_path", rawJSON(t, "elsewhere"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	assert.Empty(t, api.updateCalls())
}

func TestUpdateFieldRejectsEmptyName(t *testing.T) {
	api := &fakeAPI{}
	svc, eng, _ := newFixture(t, api)

	err := svc.UpdateField(7, "name", rawJSON(t, "   "))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	assert.Empty(t, api.updateCalls())
	assert.Equal(t, "Homework 1", currentName(eng), "rejected edit must not echo")
}

func TestUpdateFieldUnknownAssignment(t *testing.T) {
	api := &fakeAPI{}
	svc, _, _ := newFixture(t, api)

	err := svc.UpdateField(999, "name", rawJSON(t, "Renamed"))
	assert.ErrorIs(t, err, domain.ErrAssignmentNotFound)
	assert.Empty(t, api.updateCalls())
}

func TestUpdateFieldRejectsInvertedDates(t *testing.T) {
	api := &fakeAPI{}
	svc, _, _ := newFixture(t, api)

	// Available date after the existing due date never reaches the wire.
	err := svc.UpdateField(7, "adjusted_available_date", rawJSON(t, "2026-02-01T00:00:00Z"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
	assert.Empty(t, api.updateCalls())
}

func TestUpdateFieldLeadingFireAndEcho(t *testing.T) {
	api := &fakeAPI{}
	svc, eng, _ := newFixture(t, api)

	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "Homework 1 (revised)")))

	// Leading edge: the first edit fires without waiting for the window.
	calls := api.updateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 7, calls[0].assignmentID)
	assert.Equal(t, "name", calls[0].field)
	assert.Equal(t, "Homework 1 (revised)", calls[0].value)

	// Optimistic echo: both the list entry and the current assignment update.
	snap, ok := eng.AssignmentSnapshot()
	require.True(t, ok)
	assert.Equal(t, "Homework 1 (revised)", snap.Assignments[0].Name)
	require.NotNil(t, snap.Current)
	assert.Equal(t, "Homework 1 (revised)", snap.Current.Name)
}

func TestUpdateFieldBurstCoalesces(t *testing.T) {
	api := &fakeAPI{}
	svc, eng, sched := newFixture(t, api)

	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "v1")))
	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "v2")))
	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "v3")))

	// Only the leading fire has gone out; the rest are pending.
	require.Len(t, api.updateCalls(), 1)
	// The local view already shows the newest value.
	assert.Equal(t, "v3", currentName(eng))

	sched.fireAll()

	calls := api.updateCalls()
	require.Len(t, calls, 2, "burst collapses to leading + one trailing write")
	assert.Equal(t, "v1", calls[0].value)
	assert.Equal(t, "v3", calls[1].value, "trailing write carries the latest value")
}

func TestUpdateFieldIndependentPerField(t *testing.T) {
	api := &fakeAPI{}
	svc, _, _ := newFixture(t, api)

	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "Renamed")))
	require.NoError(t, svc.UpdateField(7, "adjusted_due_date", rawJSON(t, "2026-01-25T00:00:00Z")))

	// Different fields debounce independently, so both fire on the leading
	// edge.
	calls := api.updateCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "name", calls[0].field)
	assert.Equal(t, "adjusted_due_date", calls[1].field)
	assert.Equal(t, "2026-01-25T00:00:00Z", calls[1].value, "dates go out as RFC 3339 strings")
}

func TestUpdateFieldClearsDateWithNull(t *testing.T) {
	api := &fakeAPI{}
	svc, eng, _ := newFixture(t, api)

	require.NoError(t, svc.UpdateField(7, "adjusted_due_date", json.RawMessage("null")))

	calls := api.updateCalls()
	require.Len(t, calls, 1)
	assert.Nil(t, calls[0].value)

	snap, _ := eng.AssignmentSnapshot()
	assert.Nil(t, snap.Assignments[0].AdjustedDueAt)
	assert.False(t, snap.Assignments[0].IsCreated(), "clearing a date unschedules the assignment")
}

func TestTrailingRejectionRollsBackToAcceptedValue(t *testing.T) {
	// Leading write accepted, trailing write rejected.
	api := &fakeAPI{rejectFrom: 2}
	svc, eng, sched, fetcher := newFixtureWithFetcher(t, api)

	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "v1")))
	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "v2")))
	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "v3")))
	require.Len(t, api.updateCalls(), 1)

	// The grader accepted v1, so subsequent polls serve it.
	fetcher.rename("v1")

	sched.fireAll()

	// The rollback target is the accepted v1, not the burst's intermediate
	// v2 that the grader never saw.
	assert.Equal(t, "v1", currentName(eng))

	notices := eng.TakeNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, engine.NoticeEditError, notices[0].Kind)

	// The wake-triggered re-fetch agrees with the rollback.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, "v1", currentName(eng))
}

func TestUpdateFieldRollsBackOnRejection(t *testing.T) {
	api := &fakeAPI{respond: domain.NewError(domain.ErrCodeTransport, "grader api request failed")}
	svc, eng, _ := newFixture(t, api)

	require.NoError(t, svc.UpdateField(7, "name", rawJSON(t, "Doomed rename")),
		"transport failures surface as notices, not synchronous errors")

	waitFor(t, func() bool { return currentName(eng) == "Homework 1" }, "optimistic value rolled back")

	notices := eng.TakeNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, engine.NoticeEditError, notices[0].Kind)
	assert.Contains(t, notices[0].Message, "name")
}
