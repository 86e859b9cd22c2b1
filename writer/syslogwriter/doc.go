// Package syslogwriter provides a writer that sends records to the local
// or a remote syslog daemon. Levels map to syslog severities; see
// SeverityOf. The domain is sent in front of the message.
package syslogwriter
