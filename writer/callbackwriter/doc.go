// Package callbackwriter provides a writer that hands each record to a
// user function.
package callbackwriter
