// Package errutil collects the small set of assertion helpers used across
// the index engines to enforce build-time contracts (sorted input, key
// ranges, unsupported parameter combinations). Violations are bugs in the
// caller, not recoverable errors: every helper panics.
package errutil

import "fmt"

// BugOn panics with a formatted message if cond is true.
func BugOn(cond bool, format string, msg ...any) {
	if cond {
		panic(fmt.Sprintf(format, msg...))
	}
}

// BugOnNotEq panics if a != b.
func BugOnNotEq(a, b any) {
	if a != b {
		panic(fmt.Sprintf("expected equal, got %v != %v", a, b))
	}
}

// Bug unconditionally panics with a formatted message.
func Bug(format string, msg ...any) {
	panic(fmt.Sprintf(format, msg...))
}

// First returns the first non-nil error in errs, or nil.
func First(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// FatalIf panics if err is non-nil.
func FatalIf(err error) {
	if err == nil {
		return
	}
	panic(fmt.Sprintf("FATAL: %v", err))
}
