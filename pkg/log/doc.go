// Package log provides the logging abstraction used by whisker components.
//
// Components depend on the Logger interface only. A zerolog adapter writes
// human-readable console output; the no-op logger is the default for
// embedded use and tests.
//
// # Usage
//
//	logger, err := log.NewConsoleLogger(os.Stderr, "debug")
//	if err != nil {
//	    return err
//	}
//	logger.Info("pipeline running", log.String("port", "/dev/ttyACM0"))
//
// To reuse an existing zerolog.Logger:
//
//	logger := log.NewZerologAdapterWithLogger(zl)
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package log
