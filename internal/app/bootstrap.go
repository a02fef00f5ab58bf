// Package app hosts the engine frame loop: it brings the native window
// system up once per process, owns the window and its render targets, and
// serves inspector requests between frames.
package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/lumen/internal/config"
	"github.com/1broseidon/lumen/internal/platform"
	"github.com/1broseidon/lumen/internal/platform/headless"
	"github.com/1broseidon/lumen/internal/window"
	"github.com/1broseidon/lumen/internal/x11"
)

// Bootstrap guards process-wide initialization of a window-system backend.
// The required order is:
//
//	Bootstrap.Init -> window.New -> ... -> Window.Close -> Bootstrap.Terminate
type Bootstrap struct {
	backend platform.Backend
	logger  *slog.Logger

	once       sync.Once
	err        error
	mu         sync.Mutex
	ready      bool
	terminated bool
}

// NewBootstrap wraps backend. Nothing is initialized until Init.
func NewBootstrap(backend platform.Backend, logger *slog.Logger) *Bootstrap {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bootstrap{backend: backend, logger: logger}
}

// NewBackend returns the backend named by cfg.Backend.
func NewBackend(cfg *config.Config, logger *slog.Logger) (platform.Backend, error) {
	switch cfg.Backend {
	case config.BackendX11, "":
		return x11.New(x11.DisplayEnv{
			Display:    cfg.X11.Display,
			XAuthority: cfg.X11.XAuthority,
		}, logger), nil
	case config.BackendHeadless:
		return headless.New(headless.Options{Logger: logger}), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Init initializes the backend on first call. Later calls return the first
// result without touching the backend again.
func (b *Bootstrap) Init() error {
	b.once.Do(func() {
		if err := b.backend.Init(); err != nil {
			b.err = fmt.Errorf("%w: %s: %w", window.ErrPlatformInit, b.backend.Name(), err)
			return
		}
		b.mu.Lock()
		b.ready = true
		b.mu.Unlock()
		b.logger.Info("window system initialized", "backend", b.backend.Name())
	})
	return b.err
}

// Backend returns the wrapped backend.
func (b *Bootstrap) Backend() platform.Backend { return b.backend }

// Terminate shuts the backend down. It is a no-op when Init failed or was
// never called, and after the first Terminate.
func (b *Bootstrap) Terminate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready || b.terminated {
		return
	}
	b.terminated = true
	b.backend.Terminate()
	b.logger.Info("window system terminated", "backend", b.backend.Name())
}
