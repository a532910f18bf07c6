package resilience

import "shortfactory/internal/services"

// classify maps the shared services error taxonomy onto this layer's
// tagged ErrorKind so stage adapters classify failures once, using the
// sentinel errors in the services package, rather than every provider
// client re-deriving retry eligibility from scratch.
func classify(err error) ErrorKind {
	switch services.ClassifyFailure(err) {
	case "validation":
		return KindValidationError
	case "auth":
		return KindAuthError
	case "client":
		return KindClientError
	case "rate_limited":
		return KindRateLimited
	case "timeout":
		return KindTimeout
	case "circuit_open":
		return KindCircuitOpen
	case "resource":
		return KindTransientUnavailable
	case "transient":
		return KindTransientUnavailable
	default:
		return KindUnexpected
	}
}
