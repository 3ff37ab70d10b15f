// Package ui provides semantic text formatting for kapu's CLI output.
//
// Formatters render with color when the terminal supports it and fall back
// to plain decorations (backticks, quotes, brackets) when NO_COLOR is set or
// the output is not a terminal.
//
//	ui.Code.Sprint("kapu vault keygen")  // Commands
//	ui.Path.Sprint("note.enc.meta")      // File paths
//	ui.Success.Sprint("✓")               // Success indicators
//	ui.Error.Sprint("✗")                 // Error indicators
//	ui.Info.Sprint("→")                  // Hints
//	ui.Highlight.Sprint("rabin")         // User values
//	ui.Decoy.Sprint("decoy")             // Decoy content markers
//
// Mask hides key material in verbose output and Bullets renders the
// protection summary of an artifact.
package ui
