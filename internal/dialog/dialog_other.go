//go:build !windows

package dialog

import (
	"fmt"
	"os"
)

// ShowError writes the error to stderr. Non-Windows builds have no native
// modal dialog to raise.
func ShowError(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}
