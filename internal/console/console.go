// Package console manages the optional diagnostic console window.
// The launcher is built as a GUI-subsystem binary and normally has no
// console at all; in debug mode one is allocated and stdout/stderr are
// pointed at it.
package console
