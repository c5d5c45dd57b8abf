// Package install resolves the launcher's installation directory from the
// running executable and verifies the fixed dependency layout required to
// start the overlay.
package install

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rdo-overlay/launcher/internal/config"
)

// MissingDependencyError reports the first required file found absent
// during verification.
type MissingDependencyError struct {
	Name string // human-readable dependency name
	Path string // absolute path that was checked
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s not found at: %s", e.Name, e.Path)
}

// Root returns the directory containing the running executable, with
// symlinks resolved. This is the install root for the lifetime of the
// process.
func Root() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("get executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}
	return filepath.Dir(execPath), nil
}

// dependency pairs a display name with a path relative to the install root.
type dependency struct {
	name string
	rel  string
}

// Layout describes where the launcher expects its dependencies under the
// install root. It is immutable after construction.
type Layout struct {
	root  string
	paths config.PathsConfig
	deps  []dependency
}

// NewLayout builds a Layout for the given install root. Verification order
// matches the launch order: interpreter, UI runtime, backend entry,
// frontend entry.
func NewLayout(root string, paths config.PathsConfig) *Layout {
	return &Layout{
		root:  root,
		paths: paths,
		deps: []dependency{
			{"Python runtime", paths.Interpreter},
			{"Electron runtime", paths.UIRuntime},
			{"Backend application", paths.BackendEntry},
			{"Frontend application", paths.FrontendEntry},
		},
	}
}

// Root returns the install root directory.
func (l *Layout) Root() string { return l.root }

// InterpreterPath returns the absolute path of the backend interpreter.
func (l *Layout) InterpreterPath() string {
	return filepath.Join(l.root, filepath.FromSlash(l.paths.Interpreter))
}

// UIRuntimePath returns the absolute path of the frontend shell runtime.
func (l *Layout) UIRuntimePath() string {
	return filepath.Join(l.root, filepath.FromSlash(l.paths.UIRuntime))
}

// BackendEntryPath returns the absolute path of the backend entry script.
func (l *Layout) BackendEntryPath() string {
	return filepath.Join(l.root, filepath.FromSlash(l.paths.BackendEntry))
}

// AppDirPath returns the absolute path of the application directory passed
// to the frontend shell.
func (l *Layout) AppDirPath() string {
	return filepath.Join(l.root, filepath.FromSlash(l.paths.AppDir))
}

// DebugEnabled reports whether the debug marker file is present in the
// install root.
func (l *Layout) DebugEnabled() bool {
	_, err := os.Stat(filepath.Join(l.root, l.paths.DebugMarker))
	return err == nil
}

// Verify checks that every required dependency exists on disk, logging each
// check. It stops at the first missing dependency and returns a
// *MissingDependencyError naming it.
func (l *Layout) Verify(logger *zap.Logger) error {
	logger.Info("verifying installation", zap.String("install_dir", l.root))

	for _, dep := range l.deps {
		path := filepath.Join(l.root, filepath.FromSlash(dep.rel))
		if _, err := os.Stat(path); err != nil {
			logger.Error("dependency missing",
				zap.String("dependency", dep.name),
				zap.String("path", path))
			return &MissingDependencyError{Name: dep.name, Path: path}
		}
		logger.Debug("dependency present",
			zap.String("dependency", dep.name),
			zap.String("path", path))
	}

	logger.Info("installation verified")
	return nil
}
