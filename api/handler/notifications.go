package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
	"github.com/helxplatform/eduhelx-student-ext/pkg/httpcontext"
)

// NotificationsHandler drains user-visible notices: downsync file lists and
// failed background edits.
type NotificationsHandler struct {
	baseHandler
	engine *engine.Engine
}

func NewNotificationsHandler(eng *engine.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      eng,
	}
}

// Take returns all pending notices and clears them.
func (h *NotificationsHandler) Take(ctx *fasthttp.RequestCtx) {
	notices := h.engine.TakeNotices()
	if notices == nil {
		notices = []engine.Notice{}
	}
	h.respondSuccess(ctx, http.StatusOK, notices)
}
