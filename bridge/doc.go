// Package bridge holds what the adapters in its subpackages share.
//
// The subpackages let code written against another logging API emit
// through fastlogging:
//
//	slogbridge     log/slog Handler
//	zapbridge      go.uber.org/zap zapcore.Core
//	logrusbridge   github.com/sirupsen/logrus Hook
//	zerologbridge  github.com/rs/zerolog LevelWriter
//
// Records carry no structured fields, so the fields of the foreign API are
// appended to the message as key=value pairs by Format. Timestamps are
// taken when the record is emitted.
package bridge
