// Package log provides the logging abstraction used by storytext components.
//
// The pipeline never writes to a global logger. Every component receives a
// Logger at construction; the zero configuration is NoopLogger, so
// embedding storytext in another service stays silent unless asked.
//
// # Usage
//
// Wrap a zerolog logger:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//
// or build a console logger at a given level:
//
//	logger := log.NewConsoleLogger(zerolog.DebugLevel)
//
// Script diagnostics (stderr of a failed extraction) are logged at Error
// level under the "stderr" key; per-run progress is logged at Debug.
package log
