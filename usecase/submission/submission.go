package submission

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/domain"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
	appLogger "github.com/helxplatform/eduhelx-student-ext/pkg/logger"
)

// GraderAPI is the slice of the grader client the submission path needs.
type GraderAPI interface {
	FetchAssignments(ctx context.Context, path string) (domain.AssignmentSnapshot, error)
	CreateSubmission(ctx context.Context, assignmentID int, summary, description string) (domain.Submission, error)
}

// Service hands in assignments. Submission is a plain one-shot request: it
// fetches a fresh snapshot for gating (rather than trusting a possibly stale
// poll), checks the availability window, and creates the submission.
type Service struct {
	api    GraderAPI
	engine *engine.Engine
	logger *zap.Logger
	now    func() time.Time
}

// New builds the submission service.
func New(api GraderAPI, eng *engine.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:    api,
		engine: eng,
		logger: logger,
		now:    time.Now,
	}
}

// Submit creates a submission for the assignment containing path.
func (s *Service) Submit(ctx context.Context, path, summary, description string) (domain.Submission, error) {
	if summary == "" {
		return domain.Submission{}, domain.NewError(domain.ErrCodeValidation, "summary is required")
	}

	snapshot, err := s.api.FetchAssignments(ctx, path)
	if err != nil {
		return domain.Submission{}, err
	}
	if !snapshot.InClassRepo {
		return domain.Submission{}, domain.ErrNotInClassRepo
	}
	if snapshot.Current == nil {
		return domain.Submission{}, domain.ErrNotInAssignment
	}

	current := *snapshot.Current
	now := s.now()
	if !current.IsAvailableAt(now) {
		return domain.Submission{}, domain.ErrNotAvailableYet
	}
	if current.IsClosedAt(now) {
		return domain.Submission{}, domain.ErrPastDue
	}

	created, err := s.api.CreateSubmission(ctx, current.ID, summary, description)
	if err != nil {
		return domain.Submission{}, err
	}

	appLogger.WithRequestID(ctx, s.logger).Info("submission created",
		zap.Int("assignment_id", current.ID),
		zap.Int("submission_id", created.ID))
	// Pull the new submission into the polled view right away.
	s.engine.WakeAssignments()
	return created, nil
}
