//go:build !windows

package autostart

import "errors"

var errUnsupported = errors.New("login autostart is only supported on Windows")

type stubManager struct{}

// New returns a Manager that reports autostart as unsupported.
func New() Manager {
	return &stubManager{}
}

func (s *stubManager) Name() string { return "RDOMapOverlay" }

func (s *stubManager) IsInstalled() (bool, error) { return false, nil }

func (s *stubManager) Install(execPath string) error { return errUnsupported }

func (s *stubManager) Uninstall() error { return errUnsupported }
