package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/api/transport"
	"github.com/helxplatform/eduhelx-student-ext/domain"
	"github.com/helxplatform/eduhelx-student-ext/pkg/httpcontext"
	submissionUC "github.com/helxplatform/eduhelx-student-ext/usecase/submission"
)

// SubmissionHandler hands in the assignment containing the current path.
type SubmissionHandler struct {
	baseHandler
	submissions *submissionUC.Service
}

func NewSubmissionHandler(submissions *submissionUC.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		submissions: submissions,
	}
}

// Submit creates a submission.
func (h *SubmissionHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req transport.SubmitRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}
	if req.CurrentPath == "" {
		h.respondError(ctx, domain.NewError(domain.ErrCodeValidation, "current_path is required"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.submissions.Submit(stdCtx, req.CurrentPath, req.Summary, req.Description)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}
