package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/internal/classrepo"
	"github.com/helxplatform/eduhelx-student-ext/internal/infrastructure/grader"
	"github.com/helxplatform/eduhelx-student-ext/internal/services/engine"
	"github.com/helxplatform/eduhelx-student-ext/internal/version"
	"github.com/helxplatform/eduhelx-student-ext/pkg/httpcontext"
)

// SettingsAPI is the slice of the grader client the settings surface needs.
type SettingsAPI interface {
	FetchSettings(ctx context.Context) (grader.Settings, error)
	MarkForkAsCloned(ctx context.Context) error
}

// SettingsHandler reports server metadata the UI reads once at startup and
// records setup milestones back to the grader.
type SettingsHandler struct {
	baseHandler
	engine *engine.Engine
	api    SettingsAPI
}

func NewSettingsHandler(eng *engine.Engine, api SettingsAPI, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      eng,
		api:         api,
	}
}

// Get returns the server version and, once the course is known, the class
// repository root (relative to the working directory, which is the UI's "/").
// Grader-side settings are fetched live; their absence is not fatal.
func (h *SettingsHandler) Get(ctx *fasthttp.RequestCtx) {
	out := map[string]interface{}{
		"serverVersion": version.Version,
	}
	if snapshot, ok := h.engine.CourseSnapshot(); ok {
		out["repoRoot"] = classrepo.Root(snapshot.Course.Name)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	if settings, err := h.api.FetchSettings(stdCtx); err != nil {
		h.logger.Warn("grader settings unavailable", zap.Error(err))
	} else {
		out["giteaSSHURL"] = settings.GiteaSSHURL
	}

	h.respondSuccess(ctx, http.StatusOK, out)
}

// MarkForkCloned records on the grader that the student's fork has been
// cloned locally. The UI calls this once after its initial repository setup.
func (h *SettingsHandler) MarkForkCloned(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.api.MarkForkAsCloned(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}
