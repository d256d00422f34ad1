package grader

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/helxplatform/eduhelx-student-ext/domain"
)

// tokenManager logs in against the grader API and transparently refreshes
// the access token before it expires. The grader signs the token; the client
// only reads the exp claim to schedule refreshes, so no verification happens
// here.
type tokenManager struct {
	client *Client
	cfg    Config

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenManager(client *Client, cfg Config) *tokenManager {
	if cfg.JWTRefreshLeeway <= 0 {
		cfg.JWTRefreshLeeway = 60 * time.Second
	}
	return &tokenManager{client: client, cfg: cfg}
}

type loginRequest struct {
	Onyen           string `json:"onyen"`
	AutogenPassword string `json:"autogen_password,omitempty"`
	AccessToken     string `json:"access_token,omitempty"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// accessToken returns a token that is valid for at least the refresh leeway,
// logging in (or re-logging-in) when needed.
func (tm *tokenManager) accessToken(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != "" && time.Now().Before(tm.expiresAt.Add(-tm.cfg.JWTRefreshLeeway)) {
		return tm.token, nil
	}
	if err := tm.login(ctx); err != nil {
		return "", err
	}
	return tm.token, nil
}

// login is the one request that must not go through Client.do, since do would
// recurse into accessToken.
func (tm *tokenManager) login(ctx context.Context) error {
	in := loginRequest{Onyen: tm.cfg.UserOnyen}
	path := "/login"
	if tm.cfg.AutogenPassword != "" {
		in.AutogenPassword = tm.cfg.AutogenPassword
	} else {
		in.AccessToken = tm.cfg.AccessToken
		path = "/login/appstore"
	}

	var out loginResponse
	if err := tm.client.doUnauthenticated(ctx, http.MethodPost, path, in, &out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return domain.NewError(domain.ErrCodeTransport, "grader login returned no token")
	}

	tm.token = out.AccessToken
	tm.expiresAt = tokenExpiry(out.AccessToken)
	tm.client.logger.Debug("grader token refreshed",
		zap.Time("expires_at", tm.expiresAt))
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature. A token
// with no readable expiry is treated as immediately stale, forcing a login
// on the next request.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
