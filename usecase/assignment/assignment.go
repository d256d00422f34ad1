package assignment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/domain"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
)

// GraderAPI is the slice of the grader client the edit path needs.
type GraderAPI interface {
	UpdateAssignmentField(ctx context.Context, assignmentID int, field string, value interface{}) error
}

// Service is the mutation coordinator for assignment edits. Each field
// debounces independently: the first edit in a burst goes out immediately and
// later edits inside the window coalesce into one trailing write carrying the
// latest value. Edits are validated locally before any round trip, echoed
// optimistically into the local view, and rolled back if the grader rejects
// the write.
type Service struct {
	api       GraderAPI
	engine    *engine.Engine
	debouncer *engine.Debouncer
	logger    *zap.Logger
	timeout   time.Duration

	// confirmed holds the last server-acknowledged value per debounce key.
	// It is the rollback target when a later write is rejected: inside a
	// burst the intermediate optimistic values were never accepted by the
	// grader, so reverting to any of them would still show fiction.
	mu        sync.Mutex
	confirmed map[string]interface{}
}

// New builds the edit service. window is the per-field debounce window.
func New(api GraderAPI, eng *engine.Engine, window time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:       api,
		engine:    eng,
		debouncer: engine.NewDebouncer(window),
		logger:    logger,
		timeout:   30 * time.Second,
		confirmed: make(map[string]interface{}),
	}
}

// NewWithDebouncer injects a pre-built debouncer (tests drive it with a fake
// clock).
func NewWithDebouncer(api GraderAPI, eng *engine.Engine, deb *engine.Debouncer, logger *zap.Logger) *Service {
	s := New(api, eng, time.Second, logger)
	s.debouncer = deb
	return s
}

// Close cancels any scheduled trailing writes.
func (s *Service) Close() error {
	s.debouncer.Stop()
	return nil
}

const (
	fieldName              = "name"
	fieldAdjustedAvailable = "adjusted_available_date"
	fieldAdjustedDue       = "adjusted_due_date"
)

// UpdateField validates and schedules one field edit. A validation failure is
// returned synchronously and never reaches the wire; transport failures of
// the debounced write surface later as an edit_error notice, with the
// optimistic value rolled back.
func (s *Service) UpdateField(assignmentID int, field string, raw json.RawMessage) error {
	value, err := parseValue(field, raw)
	if err != nil {
		return err
	}

	snapshot, ok := s.engine.AssignmentSnapshot()
	if !ok {
		return domain.NewError(domain.ErrCodeValidation, "assignments are still loading")
	}
	target := findAssignment(snapshot, assignmentID)
	if target == nil {
		return domain.ErrAssignmentNotFound
	}

	if err := validateEdit(*target, field, value); err != nil {
		return err
	}

	key := fmt.Sprintf("%d/%s", assignmentID, field)
	s.mu.Lock()
	if _, ok := s.confirmed[key]; !ok {
		s.confirmed[key] = fieldValue(*target, field)
	}
	s.mu.Unlock()

	s.apply(assignmentID, field, value)

	s.debouncer.Submit(key, value, func(latest interface{}) {
		s.send(assignmentID, field, key, latest)
	})
	return nil
}

func (s *Service) send(assignmentID int, field, key string, value interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.api.UpdateAssignmentField(ctx, assignmentID, field, wireValue(value)); err != nil {
		s.mu.Lock()
		accepted := s.confirmed[key]
		s.mu.Unlock()

		s.logger.Warn("assignment edit rejected, rolling back",
			zap.Int("assignment_id", assignmentID),
			zap.String("field", field),
			zap.Error(err))
		s.apply(assignmentID, field, accepted)
		s.engine.PushNotice(engine.Notice{
			Kind:    engine.NoticeEditError,
			Message: fmt.Sprintf("failed to update %s: %v", field, err),
		})
		// Re-fetch server truth in case the rolled-back value is stale too.
		s.engine.WakeAssignments()
		return
	}

	s.mu.Lock()
	s.confirmed[key] = value
	s.mu.Unlock()

	s.logger.Info("assignment field updated",
		zap.Int("assignment_id", assignmentID),
		zap.String("field", field))
}

// apply echoes value into the local view as an atomic snapshot replacement.
func (s *Service) apply(assignmentID int, field string, value interface{}) {
	s.engine.MutateAssignments(func(snapshot domain.AssignmentSnapshot) domain.AssignmentSnapshot {
		out := snapshot
		out.Assignments = make([]domain.Assignment, len(snapshot.Assignments))
		copy(out.Assignments, snapshot.Assignments)
		for i := range out.Assignments {
			if out.Assignments[i].ID == assignmentID {
				setField(&out.Assignments[i], field, value)
			}
		}
		if snapshot.Current != nil && snapshot.Current.ID == assignmentID {
			current := *snapshot.Current
			setField(&current, field, value)
			out.Current = &current
		}
		return out
	})
}

func parseValue(field string, raw json.RawMessage) (interface{}, error) {
	switch field {
	case fieldName:
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, domain.WrapError(domain.ErrCodeValidation, "name must be a string", err)
		}
		if strings.TrimSpace(name) == "" {
			return nil, domain.NewError(domain.ErrCodeValidation, "name must not be empty")
		}
		return name, nil
	case fieldAdjustedAvailable, fieldAdjustedDue:
		var ts *time.Time
		if err := json.Unmarshal(raw, &ts); err != nil {
			return nil, domain.WrapError(domain.ErrCodeValidation, "date must be RFC 3339 or null", err)
		}
		return ts, nil
	default:
		return nil, domain.NewError(domain.ErrCodeValidation,
			fmt.Sprintf("field %q is not editable", field))
	}
}

// validateEdit rejects date orderings locally so a bad pair never makes a
// round trip.
func validateEdit(a domain.Assignment, field string, value interface{}) error {
	switch field {
	case fieldAdjustedAvailable:
		return domain.ValidateDates(value.(*time.Time), a.AdjustedDueAt)
	case fieldAdjustedDue:
		return domain.ValidateDates(a.AdjustedAvailableAt, value.(*time.Time))
	}
	return nil
}

func fieldValue(a domain.Assignment, field string) interface{} {
	switch field {
	case fieldName:
		return a.Name
	case fieldAdjustedAvailable:
		return a.AdjustedAvailableAt
	case fieldAdjustedDue:
		return a.AdjustedDueAt
	}
	return nil
}

func setField(a *domain.Assignment, field string, value interface{}) {
	switch field {
	case fieldName:
		a.Name = value.(string)
	case fieldAdjustedAvailable:
		a.AdjustedAvailableAt = value.(*time.Time)
	case fieldAdjustedDue:
		a.AdjustedDueAt = value.(*time.Time)
	}
}

func wireValue(value interface{}) interface{} {
	if ts, ok := value.(*time.Time); ok {
		if ts == nil {
			return nil
		}
		return ts.Format(time.RFC3339)
	}
	return value
}

func findAssignment(snapshot domain.AssignmentSnapshot, id int) *domain.Assignment {
	for i := range snapshot.Assignments {
		if snapshot.Assignments[i].ID == id {
			return &snapshot.Assignments[i]
		}
	}
	return nil
}
