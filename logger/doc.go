// Package logger is the application-facing API of fastlogging. Most
// programs only need this package.
//
// A Logger is a lightweight handle. It carries its own level, checked
// before anything is allocated, plus an optional domain and thread name,
// and routes records through a shared *logging.Logging:
//
//	l, _ := logging.New(logging.Config{...})
//	log := logger.NewBuilder().
//	    WithLogging(l).
//	    WithDomain("db").
//	    WithLevel(logger.DebugLevel).
//	    Build()
//	log.Infof("connected to %s", addr)
//
// A Logger built without a coordinator writes synchronously to stderr.
//
// The package-level functions Info, Error, Debugf, etc. use Default,
// which lazily creates a coordinator with a console writer at INFO:
//
//	logger.Info("ready")
//	defer logger.ShutdownDefault(false)
//
// Fatal logs at CRITICAL and returns; it never exits the program.
package logger
