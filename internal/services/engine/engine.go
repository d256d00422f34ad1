package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/domain"
)

// Fetcher is the slice of the grader client the engine depends on.
type Fetcher interface {
	FetchAssignments(ctx context.Context, path string) (domain.AssignmentSnapshot, error)
	FetchCourseAndStudent(ctx context.Context) (domain.CourseSnapshot, error)
	FetchInstructorAndRoster(ctx context.Context) (domain.RosterSnapshot, error)
}

// Config tunes the engine's pollers.
type Config struct {
	AssignmentPollInterval time.Duration
	CoursePollInterval     time.Duration
	RosterPollInterval     time.Duration
	// InstructorMode additionally polls the course roster.
	InstructorMode bool
}

// View is the read-only merged state handed to the UI. Every read derives it
// fresh from the current snapshots.
type View struct {
	Assignments []domain.Assignment `json:"assignments"`
	Current     *domain.Assignment  `json:"current_assignment"`
	Course      *domain.Course      `json:"course"`
	Student     *domain.Student     `json:"student"`
	Path        string              `json:"path"`
	// Loading is true while any required domain is still unfetched.
	Loading bool `json:"loading"`
}

// Notice is a user-visible event surfaced outside the request/response flow:
// a downsync notification or a failed background write.
type Notice struct {
	Kind       string    `json:"kind"`
	Message    string    `json:"message,omitempty"`
	Files      []string  `json:"files,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

const (
	NoticeDownsync  = "downsync"
	NoticeEditError = "edit_error"
)

// Engine is the synchronization coordinator. It owns the snapshot slots and
// the pollers writing into them, and rebinds the assignment poller whenever
// the working path (the context key) changes. Course and roster pollers are
// path-independent and run for the engine's entire lifetime.
type Engine struct {
	fetcher Fetcher
	cfg     Config
	logger  *zap.Logger

	assignments Slot[domain.AssignmentSnapshot]
	course      Slot[domain.CourseSnapshot]
	roster      Slot[domain.RosterSnapshot]

	mu               sync.Mutex
	lifetime         context.Context
	path             string
	cancelAssignment context.CancelFunc
	assignmentPoller *Poller[domain.AssignmentSnapshot]
	notices          []Notice
}

// New builds an engine around a fetcher.
func New(fetcher Fetcher, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start launches the path-independent pollers. They run until ctx is
// cancelled; the assignment poller is started lazily by the first SetPath.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	e.lifetime = ctx
	e.mu.Unlock()

	course := NewPoller("course_student", &e.course, func(ctx context.Context) (domain.CourseSnapshot, error) {
		return e.fetcher.FetchCourseAndStudent(ctx)
	}, e.cfg.CoursePollInterval, e.logger)
	course.Start(ctx)

	if e.cfg.InstructorMode {
		roster := NewPoller("roster", &e.roster, func(ctx context.Context) (domain.RosterSnapshot, error) {
			return e.fetcher.FetchInstructorAndRoster(ctx)
		}, e.cfg.RosterPollInterval, e.logger)
		roster.Start(ctx)
	}
}

// SetPath rebinds the assignment domain to a new working path. The previous
// poller is cancelled (a fetch already in flight completes but its result is
// discarded) and the assignment slot is reset, so readers see a loading state
// instead of another path's snapshot.
func (e *Engine) SetPath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifetime == nil {
		e.logger.Error("SetPath called before Start")
		return
	}
	if e.assignmentPoller != nil && e.path == path {
		return
	}

	if e.cancelAssignment != nil {
		e.cancelAssignment()
	}
	e.assignments.Reset()

	ctx, cancel := context.WithCancel(e.lifetime)
	e.path = path
	e.cancelAssignment = cancel
	e.assignmentPoller = NewPoller("assignments", &e.assignments, func(ctx context.Context) (domain.AssignmentSnapshot, error) {
		return e.fetcher.FetchAssignments(ctx, path)
	}, e.cfg.AssignmentPollInterval, e.logger)
	e.assignmentPoller.Start(ctx)

	e.logger.Info("assignment sync rebound", zap.String("path", path))
}

// Path returns the current context key.
func (e *Engine) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// View derives the merged read-only view from the current snapshots.
func (e *Engine) View() View {
	assignments, haveAssignments := e.assignments.Get()
	course, haveCourse := e.course.Get()

	v := View{
		Path:    e.Path(),
		Loading: !haveAssignments || !haveCourse,
	}
	if haveAssignments {
		v.Path = assignments.Path
		v.Assignments = assignments.Assignments
		v.Current = assignments.Current
	}
	if haveCourse {
		c := course.Course
		s := course.Student
		v.Course = &c
		v.Student = &s
	}
	return v
}

// CourseSnapshot exposes the course/student pair, for consumers that do not
// need the merged view.
func (e *Engine) CourseSnapshot() (domain.CourseSnapshot, bool) {
	return e.course.Get()
}

// RosterSnapshot exposes the instructor-mode snapshot.
func (e *Engine) RosterSnapshot() (domain.RosterSnapshot, bool) {
	return e.roster.Get()
}

// AssignmentSnapshot exposes the raw assignment snapshot.
func (e *Engine) AssignmentSnapshot() (domain.AssignmentSnapshot, bool) {
	return e.assignments.Get()
}

// MutateAssignments applies an atomic transform to the assignment snapshot.
// Used by the mutation coordinator for optimistic echo and rollback; the
// transform must return a fresh snapshot value.
func (e *Engine) MutateAssignments(transform func(domain.AssignmentSnapshot) domain.AssignmentSnapshot) {
	e.assignments.Mutate(transform)
}

// Subscribe registers a callback invoked after every snapshot replacement in
// any domain. This is the reactivity hook for hosts that re-render on state
// change.
func (e *Engine) Subscribe(fn func()) {
	e.assignments.Subscribe(fn)
	e.course.Subscribe(fn)
	e.roster.Subscribe(fn)
}

// WakeAssignments makes the assignment poller re-fetch sooner than its
// nominal schedule. Called on downsync notifications.
func (e *Engine) WakeAssignments() {
	e.mu.Lock()
	poller := e.assignmentPoller
	e.mu.Unlock()
	if poller != nil {
		poller.Wake()
	}
}

// PushNotice records a user-visible notice.
func (e *Engine) PushNotice(n Notice) {
	if n.ReceivedAt.IsZero() {
		n.ReceivedAt = time.Now()
	}
	e.mu.Lock()
	e.notices = append(e.notices, n)
	e.mu.Unlock()
}

// TakeNotices drains and returns all pending notices, oldest first.
func (e *Engine) TakeNotices() []Notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	notices := e.notices
	e.notices = nil
	return notices
}
