package evm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Multicall3Address is deployed at the same address on every EVM chain this
// indexer targets.
var Multicall3Address = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

const multicall3ABIJSON = `[
	{
		"inputs": [
			{
				"components": [
					{"internalType": "address", "name": "target", "type": "address"},
					{"internalType": "bool", "name": "allowFailure", "type": "bool"},
					{"internalType": "bytes", "name": "callData", "type": "bytes"}
				],
				"internalType": "struct Multicall3.Call3[]",
				"name": "calls",
				"type": "tuple[]"
			}
		],
		"name": "aggregate3",
		"outputs": [
			{
				"components": [
					{"internalType": "bool", "name": "success", "type": "bool"},
					{"internalType": "bytes", "name": "returnData", "type": "bytes"}
				],
				"internalType": "struct Multicall3.Result[]",
				"name": "returnData",
				"type": "tuple[]"
			}
		],
		"stateMutability": "payable",
		"type": "function"
	}
]`

var multicall3ABI abi.ABI

func init() {
	var err error
	multicall3ABI, err = abi.JSON(strings.NewReader(multicall3ABIJSON))
	if err != nil {
		panic("evm: failed to parse Multicall3 ABI: " + err.Error())
	}
}

// ContractCall is one leg of a batched Multicall3 aggregate3 call.
type ContractCall struct {
	Target   common.Address
	CallData []byte
}

// CallResult is the outcome of one leg of a batched call. Success is false
// when that specific leg reverted; it does not fail the whole batch.
type CallResult struct {
	Success bool
	Data    []byte
}

// BatchCallContract packs calls into a single aggregate3 invocation against
// Multicall3Address. Used by the token registry to fetch a token's
// decimals/name/symbol in one RPC round trip; pool discovery does not use
// it and calls getToken(i) one call at a time.
func (c *Client) BatchCallContract(ctx context.Context, calls []ContractCall) ([]CallResult, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	type call3 struct {
		Target       common.Address
		AllowFailure bool
		CallData     []byte
	}

	packed := make([]call3, len(calls))
	for i, call := range calls {
		packed[i] = call3{Target: call.Target, AllowFailure: true, CallData: call.CallData}
	}

	data, err := multicall3ABI.Pack("aggregate3", packed)
	if err != nil {
		return nil, fmt.Errorf("%s: packing aggregate3: %w", c.chainName, err)
	}

	var raw []byte
	err = c.retryCall(ctx, func() error {
		var callErr error
		msg := ethereum.CallMsg{To: &Multicall3Address, Data: data}
		raw, callErr = c.eth.CallContract(ctx, msg, nil)
		return callErr
	}, 3)
	if err != nil {
		return nil, fmt.Errorf("%s: aggregate3 call: %w", c.chainName, err)
	}

	var results []struct {
		Success    bool
		ReturnData []byte
	}
	if err := multicall3ABI.UnpackIntoInterface(&results, "aggregate3", raw); err != nil {
		return nil, fmt.Errorf("%s: unpacking aggregate3 result: %w", c.chainName, err)
	}

	out := make([]CallResult, len(results))
	for i, r := range results {
		out[i] = CallResult{Success: r.Success, Data: r.ReturnData}
	}
	return out, nil
}

// retryCall runs fn with exponential backoff (100ms, 200ms, 400ms, ...),
// stopping early on an error that doesn't look transient.
func (c *Client) retryCall(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransientError(err.Error()) {
			return err
		}

		backoff := time.Duration(100<<attempt) * time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}

func isTransientError(errStr string) bool {
	patterns := []string{
		"EOF", "connection reset", "timeout", "temporary failure",
		"too many requests", "rate limit", "503", "502", "504",
	}
	lower := strings.ToLower(errStr)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
