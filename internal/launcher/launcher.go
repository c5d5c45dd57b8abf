// Package launcher implements the overlay startup sequence: verify the
// installation, start the backend hidden, wait for its port, start the
// frontend visible, block until the frontend exits, then terminate the
// backend and release both handles.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rdo-overlay/launcher/internal/config"
	"github.com/rdo-overlay/launcher/internal/dialog"
	"github.com/rdo-overlay/launcher/internal/install"
	"github.com/rdo-overlay/launcher/internal/process"
	"github.com/rdo-overlay/launcher/internal/readiness"
)

// Exit codes returned by Run.
const (
	ExitOK             = 0
	ExitVerifyFailed   = 1
	ExitBackendFailed  = 2
	ExitFrontendFailed = 3
)

// Dialog title and messages shown on launch failures.
const (
	dialogTitle = "RDO Map Overlay - Launch Error"

	msgVerifyFailed   = "Installation appears to be incomplete.\n\nPlease reinstall the application."
	msgBackendFailed  = "Failed to start backend process.\n\nPlease check that Python dependencies are installed correctly."
	msgFrontendFailed = "Failed to start Electron frontend.\n\nPlease check that the application files are intact."
)

// handle is the subset of process.Handle the launcher drives. Narrowed to
// an interface so the sequence can be tested without real child processes.
type handle interface {
	Pid() int
	Wait() error
	Terminate() error
	Release() error
	Alive() bool
	Stats() (process.Usage, error)
}

// startFunc spawns a child process.
type startFunc func(process.Spec) (handle, error)

// probeFunc waits for the backend port to accept a connection.
type probeFunc func(ctx context.Context, port int, timeout, interval time.Duration) error

// notifyFunc raises a blocking user-facing error dialog.
type notifyFunc func(title, message string)

// Launcher owns the two child process handles for the lifetime of a run.
type Launcher struct {
	cfg    *config.Config
	layout *install.Layout
	logger *zap.Logger
	debug  bool

	start  startFunc
	probe  probeFunc
	notify notifyFunc

	backend  handle
	frontend handle
}

// New creates a Launcher for the given configuration and install layout.
// debug controls backend window visibility and diagnostic logging.
func New(cfg *config.Config, layout *install.Layout, logger *zap.Logger, debug bool) *Launcher {
	logger = logger.Named("launcher")
	return &Launcher{
		cfg:    cfg,
		layout: layout,
		logger: logger,
		debug:  debug,
		start: func(spec process.Spec) (handle, error) {
			h, err := process.Start(spec)
			if err != nil {
				return nil, err
			}
			return h, nil
		},
		probe: func(ctx context.Context, port int, timeout, interval time.Duration) error {
			return readiness.WaitForPort(ctx, logger, port, timeout, interval)
		},
		notify: dialog.ShowError,
	}
}

// Run executes the launch sequence and returns the process exit code.
// Cleanup runs on every exit path.
func (l *Launcher) Run(ctx context.Context) int {
	defer l.Cleanup()

	if err := l.layout.Verify(l.logger); err != nil {
		l.notify(dialogTitle, msgVerifyFailed)
		return ExitVerifyFailed
	}

	if !l.StartBackend(ctx) {
		return ExitBackendFailed
	}

	// Fixed delay so the backend can finish wiring its routes even after
	// the port opens.
	select {
	case <-ctx.Done():
		l.logger.Info("shutdown requested before frontend start")
		return ExitOK
	case <-time.After(l.cfg.Backend.StartupDelay.Duration):
	}

	if !l.StartFrontend() {
		return ExitFrontendFailed
	}

	l.WaitForExit(ctx)
	return ExitOK
}

// StartBackend spawns the backend interpreter and waits for its port.
// The backend window is hidden unless debug mode is active. A readiness
// timeout is logged as a warning only; the launch continues — a slow
// backend must not keep the user from seeing the UI.
func (l *Launcher) StartBackend(ctx context.Context) bool {
	l.logger.Info("starting backend",
		zap.String("interpreter", l.layout.InterpreterPath()),
		zap.String("entry", l.layout.BackendEntryPath()),
		zap.Bool("hidden", !l.debug))

	h, err := l.start(process.Spec{
		Path:   l.layout.InterpreterPath(),
		Args:   []string{l.layout.BackendEntryPath()},
		Dir:    l.layout.Root(),
		Hidden: !l.debug,
	})
	if err != nil {
		l.logger.Error("backend spawn failed", zap.Error(err))
		l.notify(dialogTitle, msgBackendFailed)
		return false
	}
	l.backend = h
	l.logger.Info("backend started", zap.Int("pid", h.Pid()))

	err = l.probe(ctx, l.cfg.Backend.Port,
		l.cfg.Backend.ReadyTimeout.Duration,
		l.cfg.Backend.PollInterval.Duration)
	switch {
	case err == nil:
		l.logBackendStats()
	case isTimeout(err):
		l.logger.Warn("backend did not open its port in time, continuing anyway",
			zap.Error(err),
			zap.Bool("backend_alive", h.Alive()))
	default:
		l.logger.Warn("readiness wait interrupted", zap.Error(err))
	}

	return true
}

// StartFrontend spawns the frontend shell, always visible, passing the
// application directory as its argument.
func (l *Launcher) StartFrontend() bool {
	l.logger.Info("starting frontend",
		zap.String("ui_runtime", l.layout.UIRuntimePath()),
		zap.String("app_dir", l.layout.AppDirPath()))

	h, err := l.start(process.Spec{
		Path:   l.layout.UIRuntimePath(),
		Args:   []string{l.layout.AppDirPath()},
		Dir:    l.layout.Root(),
		Hidden: false,
	})
	if err != nil {
		l.logger.Error("frontend spawn failed", zap.Error(err))
		l.notify(dialogTitle, msgFrontendFailed)
		return false
	}
	l.frontend = h
	l.logger.Info("frontend started", zap.Int("pid", h.Pid()))
	return true
}

// WaitForExit blocks until the frontend exits or ctx is cancelled. The
// launcher's lifetime is bound to the frontend's, so there is no timeout.
func (l *Launcher) WaitForExit(ctx context.Context) {
	if l.frontend == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		_ = l.frontend.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.logger.Info("frontend exited, shutting down")
	case <-ctx.Done():
		l.logger.Info("shutdown requested while frontend running")
	}
}

// Cleanup terminates the backend if it is still owned and releases both
// handles. Idempotent: handles are dropped after release, so repeated
// calls and calls with unset handles are no-ops.
func (l *Launcher) Cleanup() {
	var errs error

	if l.backend != nil {
		if err := l.backend.Terminate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("terminating backend: %w", err))
		}
		if err := l.backend.Release(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("releasing backend handle: %w", err))
		}
		l.backend = nil
	}

	if l.frontend != nil {
		if err := l.frontend.Release(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("releasing frontend handle: %w", err))
		}
		l.frontend = nil
	}

	if errs != nil {
		l.logger.Warn("cleanup finished with errors", zap.Error(errs))
		return
	}
	l.logger.Debug("cleanup complete")
}

// logBackendStats records a resource snapshot of the backend in debug mode.
func (l *Launcher) logBackendStats() {
	if !l.debug || l.backend == nil {
		return
	}
	u, err := l.backend.Stats()
	if err != nil {
		l.logger.Debug("backend stats unavailable", zap.Error(err))
		return
	}
	l.logger.Debug("backend process stats",
		zap.Float64("cpu_percent", u.CPUPercent),
		zap.Uint64("rss_bytes", u.RSSBytes))
}

func isTimeout(err error) bool {
	var timeoutErr *readiness.TimeoutError
	return errors.As(err, &timeoutErr)
}
