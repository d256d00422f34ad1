package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/api/transport"
	"github.com/helxplatform/eduhelx-student-ext/domain"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
	"github.com/helxplatform/eduhelx-student-ext/pkg/httpcontext"
	assignmentUC "github.com/helxplatform/eduhelx-student-ext/usecase/assignment"
)

// AssignmentsHandler serves the merged synchronized view and the edit path.
type AssignmentsHandler struct {
	baseHandler
	engine *engine.Engine
	edits  *assignmentUC.Service
}

func NewAssignmentsHandler(eng *engine.Engine, edits *assignmentUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *AssignmentsHandler {
	return &AssignmentsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      eng,
		edits:       edits,
	}
}

// assignmentView augments an assignment with its derived lifecycle facets, so
// the UI never computes availability from raw dates itself.
type assignmentView struct {
	domain.Assignment
	domain.Status
	ActiveSubmission *domain.Submission `json:"active_submission,omitempty"`
}

type mergedView struct {
	Assignments []assignmentView `json:"assignments"`
	Current     *assignmentView  `json:"current_assignment"`
	Course      *domain.Course   `json:"course"`
	Student     *domain.Student  `json:"student"`
	Path        string           `json:"path"`
	Loading     bool             `json:"loading"`
}

// Get rebinds the engine to the requested path and returns the merged view.
func (h *AssignmentsHandler) Get(ctx *fasthttp.RequestCtx) {
	path := string(ctx.QueryArgs().Peek("path"))
	if path == "" {
		h.respondError(ctx, domain.NewError(domain.ErrCodeValidation, "path query parameter is required"))
		return
	}

	h.engine.SetPath(path)
	view := h.engine.View()
	now := time.Now()

	out := mergedView{
		Course:  view.Course,
		Student: view.Student,
		Path:    view.Path,
		Loading: view.Loading,
	}
	for _, a := range view.Assignments {
		out.Assignments = append(out.Assignments, newAssignmentView(a, now))
	}
	if view.Current != nil {
		cv := newAssignmentView(*view.Current, now)
		out.Current = &cv
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}

// Update edits one field of an assignment through the debounced write path.
func (h *AssignmentsHandler) Update(ctx *fasthttp.RequestCtx) {
	id, err := strconv.Atoi(paramString(ctx, "id"))
	if err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	var req transport.UpdateAssignmentRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Field == "" {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}

	if err := h.edits.UpdateField(id, req.Field, req.Value); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusAccepted, nil)
}

func newAssignmentView(a domain.Assignment, now time.Time) assignmentView {
	return assignmentView{
		Assignment:       a,
		Status:           a.StatusAt(now),
		ActiveSubmission: a.ActiveSubmission(),
	}
}

func paramString(ctx *fasthttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}
