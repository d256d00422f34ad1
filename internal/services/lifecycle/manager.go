package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Closer is a component whose teardown needs no deadline, such as the
// downsync channel or the edit debouncer.
type Closer interface {
	Close() error
}

// StopFunc is a shutdown callback that honors the shutdown deadline.
type StopFunc func(ctx context.Context) error

type hook struct {
	name string
	stop StopFunc
}

// Manager stops the server's components on shutdown. Hooks run newest-first,
// so the HTTP surface (registered last) goes down before the sync machinery
// it serves.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []hook
}

// New creates a lifecycle manager with the desired shutdown timeout.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// RegisterStop adds a deadline-aware shutdown hook.
func (m *Manager) RegisterStop(name string, stop StopFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, stop: stop})
}

// RegisterCloser adds a component whose teardown is a plain Close.
func (m *Manager) RegisterCloser(name string, c Closer) {
	if c == nil {
		return
	}
	m.RegisterStop(name, func(context.Context) error { return c.Close() })
}

// Shutdown runs the hooks in reverse registration order under one shared
// deadline. A failing hook does not stop the others; their errors are joined.
// Once the deadline passes, the remaining hooks are abandoned rather than run
// against a dead context.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	hooks := append([]hook(nil), m.hooks...)
	m.mu.Unlock()

	var result error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := ctx.Err(); err != nil {
			m.logger.Warn("shutdown deadline passed, abandoning remaining components",
				zap.String("next", h.name))
			return errors.Join(result, err)
		}
		started := time.Now()
		if err := h.stop(ctx); err != nil {
			m.logger.Error("component shutdown failed",
				zap.String("component", h.name),
				zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped",
			zap.String("component", h.name),
			zap.Duration("elapsed", time.Since(started)))
	}
	return result
}

// Listen invokes cancel once a termination signal arrives.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
