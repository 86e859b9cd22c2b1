// Package slogbridge provides a log/slog.Handler that emits through
// fastlogging, so code using the standard library's structured logging
// can share writers with the rest of an application.
//
//	l, _ := logging.New(cfg)
//	slog.SetDefault(slog.New(slogbridge.NewHandler(l, core.InfoLevel, "app")))
//
// Attributes are appended to the message; groups become dotted key
// prefixes.
package slogbridge
