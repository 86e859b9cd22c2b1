// Package benchmark compares fastlogging with other Go logging libraries.
// It is a separate module so the main module does not depend on the
// libraries it is compared against.
package benchmark
