package resilience

import "fmt"

// CallError wraps a failed mediated call with the tagged kind callers and
// logs need, independent of the underlying transport error.
type CallError struct {
	Kind    ErrorKind
	Service string
	Class   OperationClass
	Err     error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s/%s: %v", e.Kind, e.Service, e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %s/%s", e.Kind, e.Service, e.Class)
}

func (e *CallError) Unwrap() error { return e.Err }

func newCallError(kind ErrorKind, service string, class OperationClass, err error) *CallError {
	return &CallError{Kind: kind, Service: service, Class: class, Err: err}
}

// errCircuitOpenSentinel is the underlying error Call wraps in a
// KindCircuitOpen CallError when the breaker for (service, class) rejects
// the call.
var errCircuitOpenSentinel = fmt.Errorf("circuit breaker open")
