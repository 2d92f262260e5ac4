package decoder

import "fmt"

// UnknownTopicError is returned when a log's topic0 matches none of the
// bridge's known event signatures. The caller must drop the log rather than
// guess at its shape.
type UnknownTopicError struct {
	Topic string
}

func (e *UnknownTopicError) Error() string {
	return fmt.Sprintf("decoder: unknown topic0 %s", e.Topic)
}

// AbiMismatchError is returned when a single ABI generation fails to decode
// a log, either because the topic count doesn't match that generation's
// indexed argument count or because the data payload doesn't match its
// non-indexed argument layout. It is not itself fatal — the caller walks
// the fallback ladder in response to it.
type AbiMismatchError struct {
	Generation string
	EventName  string
	Reason     string
}

func (e *AbiMismatchError) Error() string {
	return fmt.Sprintf("decoder: %s ABI mismatch for %s: %s", e.Generation, e.EventName, e.Reason)
}

// DecodeIncompleteError is returned when every rung of the fallback ladder
// failed to decode a log whose topic0 was otherwise recognized.
type DecodeIncompleteError struct {
	EventName string
	Attempts  []error
}

func (e *DecodeIncompleteError) Error() string {
	return fmt.Sprintf("decoder: exhausted ABI ladder for %s after %d attempts: %v", e.EventName, len(e.Attempts), e.Attempts[len(e.Attempts)-1])
}

func (e *DecodeIncompleteError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

// InvariantViolationError marks a decoded event that violates an invariant
// the rest of the pipeline depends on (e.g. an IN event decoded without a
// kappa).
// These are programming or upstream-contract errors, not transient
// conditions, and are never retried.
type InvariantViolationError struct {
	EventName string
	Reason    string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("decoder: invariant violated for %s: %s", e.EventName, e.Reason)
}
