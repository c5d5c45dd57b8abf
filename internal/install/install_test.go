package install

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/rdo-overlay/launcher/internal/config"
)

// writeDeps creates the given relative paths under root as empty files.
func writeDeps(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0640); err != nil {
			t.Fatal(err)
		}
	}
}

func testLayout(t *testing.T) (*Layout, string) {
	t.Helper()
	root := t.TempDir()
	return NewLayout(root, config.DefaultConfig().Paths), root
}

func TestVerify_AllPresent(t *testing.T) {
	layout, root := testLayout(t)
	writeDeps(t, root,
		"runtime/python/python.exe",
		"electron/electron.exe",
		"app/backend/app.py",
		"app/main.js")

	if err := layout.Verify(zap.NewNop()); err != nil {
		t.Errorf("Verify() = %v, want nil", err)
	}
}

func TestVerify_NamesFirstMissing(t *testing.T) {
	all := []string{
		"runtime/python/python.exe",
		"electron/electron.exe",
		"app/backend/app.py",
		"app/main.js",
	}
	names := []string{
		"Python runtime",
		"Electron runtime",
		"Backend application",
		"Frontend application",
	}

	for i, missing := range all {
		t.Run(missing, func(t *testing.T) {
			layout, root := testLayout(t)
			var present []string
			for j, rel := range all {
				if j != i {
					present = append(present, rel)
				}
			}
			writeDeps(t, root, present...)

			err := layout.Verify(zap.NewNop())
			var missErr *MissingDependencyError
			if !errors.As(err, &missErr) {
				t.Fatalf("Verify() = %v, want MissingDependencyError", err)
			}
			if missErr.Name != names[i] {
				t.Errorf("missing dependency = %q, want %q", missErr.Name, names[i])
			}
		})
	}
}

func TestVerify_FirstMissingWins(t *testing.T) {
	// Everything missing: the interpreter must be reported, matching
	// the check order.
	layout, _ := testLayout(t)

	err := layout.Verify(zap.NewNop())
	var missErr *MissingDependencyError
	if !errors.As(err, &missErr) {
		t.Fatalf("Verify() = %v, want MissingDependencyError", err)
	}
	if missErr.Name != "Python runtime" {
		t.Errorf("missing dependency = %q, want %q", missErr.Name, "Python runtime")
	}
}

func TestDebugEnabled(t *testing.T) {
	layout, root := testLayout(t)

	if layout.DebugEnabled() {
		t.Error("DebugEnabled() = true without marker file")
	}

	if err := os.WriteFile(filepath.Join(root, "debug.txt"), nil, 0640); err != nil {
		t.Fatal(err)
	}
	if !layout.DebugEnabled() {
		t.Error("DebugEnabled() = false with marker file present")
	}
}

func TestPathsAreRootedAtInstallDir(t *testing.T) {
	layout, root := testLayout(t)

	tests := []struct {
		name string
		got  string
		rel  string
	}{
		{"interpreter", layout.InterpreterPath(), "runtime/python/python.exe"},
		{"ui runtime", layout.UIRuntimePath(), "electron/electron.exe"},
		{"backend entry", layout.BackendEntryPath(), "app/backend/app.py"},
		{"app dir", layout.AppDirPath(), "app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := filepath.Join(root, filepath.FromSlash(tt.rel))
			if tt.got != want {
				t.Errorf("path = %q, want %q", tt.got, want)
			}
		})
	}
}

func TestRoot(t *testing.T) {
	root, err := Root()
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(root) {
		t.Errorf("Root() = %q, want absolute path", root)
	}
}
