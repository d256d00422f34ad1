package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/domain"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
	"github.com/helxplatform/eduhelx-student-ext/pkg/httpcontext"
)

// CourseHandler serves the path-independent course and roster snapshots.
type CourseHandler struct {
	baseHandler
	engine *engine.Engine
}

func NewCourseHandler(eng *engine.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      eng,
	}
}

// GetCourseAndStudent returns the course/student snapshot, or a loading
// marker while the first fetch is still outstanding.
func (h *CourseHandler) GetCourseAndStudent(ctx *fasthttp.RequestCtx) {
	snapshot, ok := h.engine.CourseSnapshot()
	if !ok {
		h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"loading": true})
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"course":  snapshot.Course,
		"student": snapshot.Student,
		"loading": false,
	})
}

// GetRoster returns the instructor-mode snapshot.
func (h *CourseHandler) GetRoster(ctx *fasthttp.RequestCtx) {
	snapshot, ok := h.engine.RosterSnapshot()
	if !ok {
		h.respondError(ctx, domain.NewError(domain.ErrCodeNotFound, "roster is not being synchronized"))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, snapshot)
}
