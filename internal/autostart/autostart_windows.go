//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`
	valueName  = "RDOMapOverlay"
)

// windowsManager implements Manager using the HKCU Run key.
type windowsManager struct{}

// New returns a Manager backed by the current user's Run key.
func New() Manager {
	return &windowsManager{}
}

// Name returns the registry value name used for registration.
func (w *windowsManager) Name() string { return valueName }

// IsInstalled checks whether the Run key value exists.
func (w *windowsManager) IsInstalled() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	_, _, err = k.GetStringValue(valueName)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading Run key value: %w", err)
	}
	return true, nil
}

// Install registers the given executable to start at login.
func (w *windowsManager) Install(execPath string) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(valueName, `"`+execPath+`"`); err != nil {
		return fmt.Errorf("writing Run key value: %w", err)
	}
	return nil
}

// Uninstall removes the login registration. Removing a registration that
// does not exist is not an error.
func (w *windowsManager) Uninstall() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(valueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("deleting Run key value: %w", err)
	}
	return nil
}
