//go:build windows

package dialog

import "golang.org/x/sys/windows"

// ShowError displays a modal error dialog and blocks until the user
// dismisses it.
func ShowError(title, message string) {
	t, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	m, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return
	}
	_, _ = windows.MessageBox(0, m, t, windows.MB_OK|windows.MB_ICONERROR|windows.MB_SETFOREGROUND)
}
