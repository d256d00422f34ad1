package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/helxplatform/eduhelx-student-ext/pkg/logger"
)

// Adapter derives stdlib request contexts from fasthttp requests. Contexts
// are parented on the application context, so in-flight work is cancelled
// when the server shuts down, and carry the request ID that is echoed back
// to the UI.
type Adapter struct {
	base    context.Context
	timeout time.Duration
}

// NewAdapter constructs an Adapter. base is the application lifetime context.
func NewAdapter(base context.Context, timeout time.Duration) *Adapter {
	if base == nil {
		base = context.Background()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Adapter{
		base:    base,
		timeout: timeout,
	}
}

// Attach returns a deadline-bound context for one request.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(a.base, a.timeout)

	reqID := requestID(ctx)
	ctx.Response.Header.Set("X-Request-ID", reqID)
	return appLogger.ContextWithRequestID(stdCtx, reqID), cancel
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if id := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID"))); id != "" {
		return id
	}
	return uuid.NewString()
}
