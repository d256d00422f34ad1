package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/api/transport"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
	"github.com/helxplatform/eduhelx-student-ext/pkg/httpcontext"
)

// ChannelHealth abstracts the push-channel client's connectivity.
type ChannelHealth interface {
	Connected() bool
}

// HealthHandler reports synchronization health: which snapshot slots have
// been populated and whether the push channel is up.
type HealthHandler struct {
	baseHandler
	engine  *engine.Engine
	channel ChannelHealth
}

func NewHealthHandler(eng *engine.Engine, channel ChannelHealth, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      eng,
		channel:     channel,
	}
}

// Check reports overall health. A missing course snapshot means the grader
// has never been reached, which is the degraded condition worth alerting on;
// an empty assignment slot only means no path has been requested yet.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	_, haveCourse := h.engine.CourseSnapshot()
	_, haveAssignments := h.engine.AssignmentSnapshot()
	channelUp := h.channel != nil && h.channel.Connected()

	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"course_student": haveCourse,
			"assignments":    haveAssignments,
			"downsync":       channelUp,
		},
	}

	if haveCourse {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "grader api has not been reached", payload))
}
