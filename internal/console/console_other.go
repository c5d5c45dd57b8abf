//go:build !windows

package console

// Attach is a no-op: non-Windows processes already have usable
// stdout/stderr.
func Attach() error { return nil }

// Detach is a no-op outside Windows.
func Detach() {}
