// Package zapbridge provides a zapcore.Core that emits through
// fastlogging:
//
//	log := zap.New(zapbridge.NewCore(l, "app", zapcore.InfoLevel))
//
// Fields are sorted by key and appended to the message.
package zapbridge
