// Package evm wraps go-ethereum's ethclient with the rate limiting,
// Multicall3 batching, and raw-filter polling the indexer needs across any
// configured EVM chain, including eth_newFilter/eth_getFilterChanges
// polling for RPC endpoints that don't support subscriptions.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"bridgeindexer/internal/metrics"
)

const (
	receiptPollInterval = 500 * time.Millisecond
	receiptPollTimeout  = 10 * time.Second
)

// Client is a rate-limited RPC client for one chain.
type Client struct {
	chainName   string
	eth         *ethclient.Client
	rpc         *rpc.Client
	rateLimiter *time.Ticker
	metrics     *metrics.Metrics
	poa         bool
}

// SetMetrics attaches a metrics sink for RPC and receipt-poll latency.
// Called once after Dial; left nil, metrics recording is simply skipped.
func (c *Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

func (c *Client) observeRPC(method string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordRPCLatency(c.chainName, method, time.Since(start))
	}
}

// Dial connects to rpcURL and wraps it with a 10 req/s limiter.
// poaExtension selects the lenient header-parsing path for
// proof-of-authority chains (every chain here other than Ethereum mainnet),
// whose headers don't satisfy go-ethereum's strict field validation.
func Dial(chainName, rpcURL string, poaExtension bool) (*Client, error) {
	rpcClient, err := rpc.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing %s RPC: %w", chainName, err)
	}

	return &Client{
		chainName:   chainName,
		eth:         ethclient.NewClient(rpcClient),
		rpc:         rpcClient,
		rateLimiter: time.NewTicker(100 * time.Millisecond),
		poa:         poaExtension,
	}, nil
}

// Close releases the underlying connection and rate limiter.
func (c *Client) Close() {
	c.eth.Close()
	c.rateLimiter.Stop()
}

func (c *Client) rateLimit() {
	<-c.rateLimiter.C
}

// ChainID returns the chain's configured chain ID.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	c.rateLimit()
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: chain id: %w", c.chainName, err)
	}
	return id, nil
}

// BlockNumber returns the chain's current head block.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	c.rateLimit()
	start := time.Now()
	n, err := c.eth.BlockNumber(ctx)
	c.observeRPC("eth_blockNumber", start)
	if err != nil {
		return 0, &RpcError{Chain: c.chainName, Op: "eth_blockNumber", Err: err}
	}
	return n, nil
}

// FilterLogs retrieves logs matching query, used by the backfill sweep.
func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	c.rateLimit()
	start := time.Now()
	logs, err := c.eth.FilterLogs(ctx, query)
	c.observeRPC("eth_getLogs", start)
	if err != nil {
		return nil, &RpcError{Chain: c.chainName, Op: "eth_getLogs", Err: err}
	}
	return logs, nil
}

// CallContract executes a read-only call against to.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	c.rateLimit()
	start := time.Now()
	msg := ethereum.CallMsg{To: &to, Data: data}
	result, err := c.eth.CallContract(ctx, msg, nil)
	c.observeRPC("eth_call", start)
	if err != nil {
		return nil, fmt.Errorf("%s: call contract %s: %w", c.chainName, to.Hex(), err)
	}
	return result, nil
}

// GetTransactionReceipt polls for txHash's receipt until it is mined or
// receiptPollTimeout elapses, matching a tail-ingestion worker that sees a
// log before the transaction's receipt is queryable on a lagging RPC node.
func (c *Client) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	pollStart := time.Now()
	deadline := pollStart.Add(receiptPollTimeout)
	for {
		c.rateLimit()
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err == nil {
			if c.metrics != nil {
				c.metrics.RecordReceiptLatency(c.chainName, time.Since(pollStart))
			}
			return receipt, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s: receipt for %s not available after %s: %w", c.chainName, txHash.Hex(), receiptPollTimeout, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiptPollInterval):
		}
	}
}

// TransactionByHash fetches the originating transaction for a log, used by
// IN decoding to recover the validator's calldata.
func (c *Client) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, error) {
	c.rateLimit()
	start := time.Now()
	tx, _, err := c.eth.TransactionByHash(ctx, txHash)
	c.observeRPC("eth_getTransactionByHash", start)
	if err != nil {
		return nil, &RpcError{Chain: c.chainName, Op: "eth_getTransactionByHash", Err: err}
	}
	return tx, nil
}

// poaHeader decodes only the header fields the indexer consumes. PoA chains
// pad extraData past the bound types.Header's strict decode enforces, so the
// ethclient path can't parse their blocks; this struct is the extension
// layer that can.
type poaHeader struct {
	Number *hexutil.Big   `json:"number"`
	Time   hexutil.Uint64 `json:"timestamp"`
}

// GetBlockByNumber fetches a block header by number.
func (c *Client) GetBlockByNumber(ctx context.Context, number uint64) (*types.Header, error) {
	c.rateLimit()
	start := time.Now()

	if c.poa {
		var head *poaHeader
		err := c.rpc.CallContext(ctx, &head, "eth_getBlockByNumber", toBlockNumArg(new(big.Int).SetUint64(number)), false)
		c.observeRPC("eth_getBlockByNumber", start)
		if err != nil {
			return nil, &RpcError{Chain: c.chainName, Op: "eth_getBlockByNumber", Err: err}
		}
		if head == nil || head.Number == nil {
			return nil, fmt.Errorf("%s: header %d: not found", c.chainName, number)
		}
		return &types.Header{Number: (*big.Int)(head.Number), Time: uint64(head.Time)}, nil
	}

	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	c.observeRPC("eth_getBlockByNumber", start)
	if err != nil {
		return nil, fmt.Errorf("%s: header %d: %w", c.chainName, number, err)
	}
	return header, nil
}

// InstallHeadFilter registers a standing eth_newFilter against query and
// returns its filter ID. The indexer polls it with PollFilter on a fixed
// interval rather than subscribing over a WebSocket, since not every
// configured chain's RPC endpoint supports eth_subscribe.
func (c *Client) InstallHeadFilter(ctx context.Context, query ethereum.FilterQuery) (string, error) {
	c.rateLimit()
	params := toFilterParams(query)

	var filterID string
	if err := c.rpc.CallContext(ctx, &filterID, "eth_newFilter", params); err != nil {
		return "", fmt.Errorf("%s: eth_newFilter: %w", c.chainName, err)
	}
	return filterID, nil
}

// PollFilter fetches and clears the new logs accumulated since the filter
// was installed or last polled.
func (c *Client) PollFilter(ctx context.Context, filterID string) ([]types.Log, error) {
	c.rateLimit()
	var raw []types.Log
	if err := c.rpc.CallContext(ctx, &raw, "eth_getFilterChanges", filterID); err != nil {
		return nil, fmt.Errorf("%s: eth_getFilterChanges: %w", c.chainName, err)
	}
	return raw, nil
}

// toFilterParams mirrors the unexported struct ethclient uses internally to
// marshal a FilterQuery for eth_newFilter/eth_getLogs, since FilterQuery
// itself doesn't implement json.Marshaler.
type filterQueryParams struct {
	FromBlock string          `json:"fromBlock,omitempty"`
	ToBlock   string          `json:"toBlock,omitempty"`
	Address   interface{}     `json:"address,omitempty"`
	Topics    [][]common.Hash `json:"topics,omitempty"`
}

func toFilterParams(q ethereum.FilterQuery) filterQueryParams {
	p := filterQueryParams{Topics: q.Topics}
	if q.FromBlock != nil {
		p.FromBlock = toBlockNumArg(q.FromBlock)
	}
	if q.ToBlock != nil {
		p.ToBlock = toBlockNumArg(q.ToBlock)
	}
	if len(q.Addresses) == 1 {
		p.Address = q.Addresses[0]
	} else if len(q.Addresses) > 1 {
		p.Address = q.Addresses
	}
	return p
}

func toBlockNumArg(n *big.Int) string {
	return "0x" + n.Text(16)
}
