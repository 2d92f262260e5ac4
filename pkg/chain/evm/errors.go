package evm

import "fmt"

// RpcError wraps a failed JSON-RPC call. It is treated as transient: the
// caller (the ingestor's retry wrapper) retries it with exponential
// backoff before giving up.
type RpcError struct {
	Chain string
	Op    string
	Err   error
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Chain, e.Op, e.Err)
}

func (e *RpcError) Unwrap() error {
	return e.Err
}
