// Package logger provides leveled, coloured logging for kapu commands.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags, only critical warnings and errors are shown.
//
// # Log Methods
//
//	Logger.Infof()          // Shown with --verbose or --debug
//	Logger.Debugf()         // Shown only with --debug
//	Logger.Warnf()          // Shown with --verbose or --debug
//	Logger.WarnfAlways()    // Always shown
//	Logger.Errorf()         // Always shown
//	Logger.ErrorfAndReturn() // Always shown, and returned as an error
//
// The zero Logger is silent apart from WarnfAlways and errors, so library
// code can hold one without the caller configuring it.
package logger
