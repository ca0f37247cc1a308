package machine

import "fmt"

// errAssertion reports an invariant violation that should never happen for
// bytecode produced by lang/compiler: a programmer error in the machine
// itself, not a fault in the Lucerna program being run.
func errAssertion(format string, args ...any) error {
	return fmt.Errorf("machine: assertion failed: "+format, args...)
}

// NoSuchMethodError reports a CallMethod against a name no method table
// (builtin or table-specific) recognizes.
type NoSuchMethodError struct {
	Receiver string
	Name     string
}

func (e *NoSuchMethodError) Error() string {
	return fmt.Sprintf("%s has no method %q", e.Receiver, e.Name)
}
