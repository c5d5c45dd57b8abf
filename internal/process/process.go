// Package process spawns and owns the launcher's child processes.
// A Handle wraps exactly one child; the owner ends its lifecycle with
// Terminate (backend) or Wait (frontend), then Release. Lifecycle methods
// are safe in any order and after the child has already exited: Release
// while a Wait is in flight defers to that Wait, and Terminate after
// Release kills by PID without reaping.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// Spec describes a child process to spawn.
type Spec struct {
	// Path is the executable to run.
	Path string

	// Args are the arguments passed after the executable name.
	Args []string

	// Dir is the working directory of the child.
	Dir string

	// Hidden requests that the child's window be created but not shown.
	// Only meaningful on Windows; ignored elsewhere.
	Hidden bool

	// Env holds extra environment entries appended to the parent's
	// environment. Nil inherits the parent environment unchanged.
	Env []string
}

// SpawnError reports that the OS refused to create a child process.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start process %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Usage is a point-in-time resource snapshot of a child process.
type Usage struct {
	CPUPercent float64
	RSSBytes   uint64
}

// Handle owns a spawned child process.
type Handle struct {
	cmd *exec.Cmd
	pid int

	mu         sync.Mutex
	done       bool // process reaped via Wait or Terminate
	waiting    bool // a Wait is in flight
	released   bool // Release was called
	osReleased bool // os-level handle release actually ran
}

// Start spawns a child process per the Spec. The child runs detached in its
// own console group so that terminal signals aimed at the launcher are not
// delivered to it directly.
func Start(spec Spec) (*Handle, error) {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	configureSysProcAttr(cmd, spec.Hidden)

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: spec.Path, Err: err}
	}

	return &Handle{cmd: cmd, pid: cmd.Process.Pid}, nil
}

// Pid returns the OS process ID of the child.
func (h *Handle) Pid() int { return h.pid }

// Wait blocks until the child exits. The returned error is the child's
// exit status error, if any.
func (h *Handle) Wait() error {
	h.mu.Lock()
	h.waiting = true
	h.mu.Unlock()

	err := h.cmd.Wait()

	h.mu.Lock()
	h.waiting = false
	h.done = true
	h.mu.Unlock()

	return err
}

// Terminate forcibly kills the child and reaps it where possible. Calling
// Terminate on a child that has already exited is not an error. After
// Release, the child is killed by PID; it cannot be reaped on that path.
func (h *Handle) Terminate() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return nil
	}

	if h.osReleased {
		p, err := os.FindProcess(h.pid)
		if err != nil {
			return fmt.Errorf("finding process %d: %w", h.pid, err)
		}
		if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("killing process %d: %w", h.pid, err)
		}
		h.done = true
		return nil
	}

	if err := h.cmd.Process.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			h.done = true
			return nil
		}
		return fmt.Errorf("killing process %d: %w", h.pid, err)
	}
	if h.waiting {
		// The in-flight Wait reaps the child and marks it done.
		return nil
	}
	// Reap so the OS can drop its process table entry promptly.
	_ = h.cmd.Wait()
	h.done = true
	return nil
}

// Release frees the OS resources associated with the child without waiting
// for it. Idempotent, and a no-op once the child has been reaped. While a
// Wait is in flight the OS handle stays with that Wait, which reaps and
// frees it itself; releasing here would race the wait.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.released = true
	if h.done || h.waiting || h.osReleased {
		return nil
	}
	h.osReleased = true
	return h.cmd.Process.Release()
}

// Alive reports whether the child process still exists in the OS process
// table.
func (h *Handle) Alive() bool {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return false
	}
	h.mu.Unlock()

	exists, err := process.PidExists(int32(h.pid))
	if err != nil {
		return false
	}
	return exists
}

// Stats returns a resource usage snapshot of the child. Used for
// diagnostic logging in debug mode.
func (h *Handle) Stats() (Usage, error) {
	p, err := process.NewProcess(int32(h.pid))
	if err != nil {
		return Usage{}, fmt.Errorf("inspecting process %d: %w", h.pid, err)
	}

	var u Usage
	if cpu, err := p.CPUPercent(); err == nil {
		u.CPUPercent = cpu
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return u, fmt.Errorf("reading memory info for %d: %w", h.pid, err)
	}
	u.RSSBytes = mem.RSS
	return u, nil
}
