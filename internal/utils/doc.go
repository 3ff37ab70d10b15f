// Package utils provides shared helpers for the kapu CLI.
//
// # Filesystem Utilities
//
//   - ReadTextFile: reads a plaintext or key input file
//   - FileExists: reports whether a regular file exists
//   - FormatPaths: formats file paths for human-readable output
//
// # System Utilities
//
//   - GetUsername: returns the current system username, recorded in the
//     audit log
//
// # I/O Utilities
//
//   - ReadMessage: reads a message piped to standard input
//
// # Terminal Utilities
//
//   - ReadPassword: prompts for a password without echo
//   - IsTerminal: checks whether stdin is a terminal
package utils
