package process

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// TestHelperProcess is re-executed as the child process in the tests below.
// It is not a real test.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) > 0 && args[0] == "sleep" {
		time.Sleep(30 * time.Second)
	}
	os.Exit(0)
}

// startHelper spawns this test binary as a child running TestHelperProcess.
func startHelper(t *testing.T, mode string) *Handle {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	h, err := Start(Spec{
		Path: exe,
		Args: []string{"-test.run=TestHelperProcess", "--", mode},
		Dir:  t.TempDir(),
		Env:  []string{"GO_WANT_HELPER_PROCESS=1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestStart_MissingExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-binary")
	_, err := Start(Spec{Path: path})

	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("Start() error = %v, want SpawnError", err)
	}
	if spawnErr.Path != path {
		t.Errorf("SpawnError.Path = %q, want %q", spawnErr.Path, path)
	}
	if spawnErr.Unwrap() == nil {
		t.Error("SpawnError should wrap the OS error")
	}
}

func TestTerminate_RunningChild(t *testing.T) {
	h := startHelper(t, "sleep")

	if h.Pid() <= 0 {
		t.Errorf("Pid() = %d, want positive", h.Pid())
	}
	if !h.Alive() {
		t.Error("Alive() = false for a running child")
	}

	if err := h.Terminate(); err != nil {
		t.Fatalf("Terminate() = %v", err)
	}
	if h.Alive() {
		t.Error("Alive() = true after Terminate")
	}

	// Terminate again: already reaped, must be a no-op.
	if err := h.Terminate(); err != nil {
		t.Errorf("second Terminate() = %v, want nil", err)
	}
	if err := h.Release(); err != nil {
		t.Errorf("Release() after Terminate = %v, want nil", err)
	}
}

func TestWait_ExitedChild(t *testing.T) {
	h := startHelper(t, "exit")

	if err := h.Wait(); err != nil {
		t.Fatalf("Wait() = %v, want nil for clean exit", err)
	}
	if h.Alive() {
		t.Error("Alive() = true after the child exited")
	}
	if err := h.Terminate(); err != nil {
		t.Errorf("Terminate() after exit = %v, want nil", err)
	}
}

func TestRelease_Idempotent(t *testing.T) {
	h := startHelper(t, "exit")
	if err := h.Wait(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := h.Release(); err != nil {
			t.Errorf("Release() call %d = %v, want nil", i+1, err)
		}
	}
}

func TestRelease_WhileWaitInFlight(t *testing.T) {
	h := startHelper(t, "sleep")

	waitDone := make(chan error, 1)
	go func() { waitDone <- h.Wait() }()

	// Let the goroutine enter Wait before releasing.
	time.Sleep(50 * time.Millisecond)

	// Release must defer to the in-flight Wait instead of yanking the OS
	// handle out from under it.
	if err := h.Release(); err != nil {
		t.Errorf("Release() during Wait = %v, want nil", err)
	}

	// The handle is still usable: Terminate must end the child and
	// unblock the Wait.
	if err := h.Terminate(); err != nil {
		t.Fatalf("Terminate() = %v", err)
	}

	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Terminate")
	}

	if err := h.Release(); err != nil {
		t.Errorf("Release() after Wait returned = %v, want nil", err)
	}
}

func TestTerminate_AfterRelease(t *testing.T) {
	h := startHelper(t, "sleep")
	pid := h.Pid()

	if err := h.Release(); err != nil {
		t.Fatal(err)
	}
	if err := h.Terminate(); err != nil {
		t.Fatalf("Terminate() after Release = %v", err)
	}

	// The child cannot be reaped on this path, but it must be dead:
	// gone from the process table or a zombie awaiting reap.
	deadline := time.Now().Add(5 * time.Second)
	for helperRunning(pid) {
		if time.Now().After(deadline) {
			t.Fatal("child still running after Terminate")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// helperRunning reports whether pid names a live, non-zombie process.
func helperRunning(pid int) bool {
	exists, err := process.PidExists(int32(pid))
	if err != nil || !exists {
		return false
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	statuses, err := p.Status()
	if err != nil {
		return false
	}
	for _, s := range statuses {
		if s == process.Zombie {
			return false
		}
	}
	return true
}

func TestStats_RunningChild(t *testing.T) {
	h := startHelper(t, "sleep")
	defer h.Terminate()

	u, err := h.Stats()
	if err != nil {
		t.Fatalf("Stats() = %v", err)
	}
	if u.RSSBytes == 0 {
		t.Error("Stats().RSSBytes = 0 for a running child")
	}
}
