// Package zerologbridge provides a zerolog.LevelWriter that emits through
// fastlogging:
//
//	log := zerolog.New(zerologbridge.NewWriter(l, "worker"))
//
// zerolog renders each event to JSON first; the writer decodes it again,
// so this bridge is slower than using the logger package directly.
package zerologbridge
