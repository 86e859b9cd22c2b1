// Package logrusbridge provides a logrus hook that emits through
// fastlogging. To route logrus output only through fastlogging, discard
// the logrus output:
//
//	log := logrus.New()
//	log.SetOutput(io.Discard)
//	log.AddHook(logrusbridge.NewHook(l, "legacy"))
package logrusbridge
