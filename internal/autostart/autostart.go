// Package autostart provides optional login autostart registration for the
// launcher. The overlay is a per-user UI application, so registration uses
// the current user's Run key rather than a system service.
package autostart

// Manager provides platform-specific autostart registration.
type Manager interface {
	IsInstalled() (bool, error)
	Install(execPath string) error
	Uninstall() error
	Name() string
}
