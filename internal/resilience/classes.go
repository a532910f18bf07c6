package resilience

import (
	"context"
	"net"
	"net/http"
	"time"
)

// OperationClass selects the timeout profile and default retry behavior for
// a call. Every outbound call declares exactly one.
type OperationClass string

const (
	ClassHealth     OperationClass = "health"
	ClassAPI        OperationClass = "api"
	ClassSearch     OperationClass = "search"
	ClassGeneration OperationClass = "generation"
	ClassDownload   OperationClass = "download"
	ClassAuth       OperationClass = "auth"
	ClassStream     OperationClass = "stream"
)

// Timeouts is the two-level (connect, overall) timeout pair for an
// operation class.
type Timeouts struct {
	Connect time.Duration
	Overall time.Duration
}

// timeoutTable is the fixed table from the resilient call layer's
// specification; it is not configurable per class, only per bulkhead sizing.
var timeoutTable = map[OperationClass]Timeouts{
	ClassHealth:     {Connect: 5 * time.Second, Overall: 10 * time.Second},
	ClassAPI:        {Connect: 10 * time.Second, Overall: 30 * time.Second},
	ClassSearch:     {Connect: 10 * time.Second, Overall: 45 * time.Second},
	ClassGeneration: {Connect: 15 * time.Second, Overall: 120 * time.Second},
	ClassDownload:   {Connect: 30 * time.Second, Overall: 300 * time.Second},
	ClassAuth:       {Connect: 15 * time.Second, Overall: 30 * time.Second},
	ClassStream:     {Connect: 30 * time.Second, Overall: 600 * time.Second},
}

// TimeoutsFor returns the fixed timeout pair for class, falling back to the
// api class's timeouts for an unrecognized value.
func TimeoutsFor(class OperationClass) Timeouts {
	if t, ok := timeoutTable[class]; ok {
		return t
	}
	return timeoutTable[ClassAPI]
}

// NewTransport builds an http.Transport whose dial timeout is the class's
// connect leg. Call's own context.WithTimeout(ctx, timeouts.Overall) still
// bounds the request end to end; this only bounds how long establishing
// the TCP connection itself may take, so a stalled handshake fails fast
// and frees a retry attempt instead of eating the whole overall budget.
func NewTransport(class OperationClass) *http.Transport {
	connect := TimeoutsFor(class).Connect
	dialer := &net.Dialer{Timeout: connect}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}
	return transport
}

// ErrorKind tags the outcome of a mediated call the way callers and logs
// need to see it, independent of the underlying transport error type.
type ErrorKind string

const (
	KindTimeout             ErrorKind = "timeout"
	KindRateLimited         ErrorKind = "rate_limited"
	KindTransientUnavailable ErrorKind = "transient_unavailable"
	KindCircuitOpen         ErrorKind = "circuit_open"
	KindClientError         ErrorKind = "client_error"
	KindAuthError           ErrorKind = "auth_error"
	KindValidationError     ErrorKind = "validation_error"
	KindUnexpected          ErrorKind = "unexpected"
)

// retryableKinds are the error kinds the backoff loop retries; every other
// kind fails a call immediately.
var retryableKinds = map[ErrorKind]bool{
	KindTimeout:              true,
	KindRateLimited:          true,
	KindTransientUnavailable: true,
}

func (k ErrorKind) retryable() bool {
	return retryableKinds[k]
}
