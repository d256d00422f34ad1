package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// TokenAuth guards the UI-facing endpoints with the extension access token
// (the host notebook server injects it into every request). An empty token
// disables the check for local development.
func TokenAuth(token string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		if token == "" {
			return next
		}
		return func(ctx *fasthttp.RequestCtx) {
			presented := extractToken(ctx)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logger.Warn("rejected request with bad access token",
					zap.ByteString("path", ctx.Path()))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if strings.HasPrefix(header, "token ") {
		return strings.TrimPrefix(header, "token ")
	}
	return header
}
