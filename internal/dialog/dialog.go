// Package dialog shows blocking native error dialogs for launch failures.
// On Windows this is a modal MessageBox; elsewhere the message is written
// to stderr.
package dialog
