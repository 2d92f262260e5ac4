// Package ingestion is the log ingestion engine: a bounded backfill sweep
// and an open-ended tail poller, plus the pipeline that turns a raw
// decoded log into a fully resolved OUT or IN record and hands it to the
// reconciler. One worker goroutine per chain runs the backfill and then the
// tail, under an errgroup.
package ingestion

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"bridgeindexer/internal/chainreg"
	"bridgeindexer/internal/decoder"
	"bridgeindexer/internal/metrics"
	"bridgeindexer/internal/reconciler"
	"bridgeindexer/internal/tokenreg"
)

// ChainRPC is the subset of pkg/chain/evm.Client the pipeline and its
// ingestion workers depend on. Declaring it here (rather than importing the
// concrete type everywhere) lets tests substitute a fake that never dials a
// real node.
type ChainRPC interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, error)
	GetBlockByNumber(ctx context.Context, number uint64) (*types.Header, error)
	InstallHeadFilter(ctx context.Context, query ethereum.FilterQuery) (string, error)
	PollFilter(ctx context.Context, filterID string) ([]types.Log, error)
}

// ChainContext bundles everything the pipeline needs to resolve events on
// one chain: its registry entry, its RPC handle, and its warmed-up
// token/pool registries.
type ChainContext struct {
	Chain   *chainreg.Chain
	Client  ChainRPC
	Tokens  *tokenreg.Registry
	Pools   *tokenreg.PoolRegistry
	Metrics *metrics.Metrics
}

// Pipeline is the decoder-plus-resolver stage between log ingestion and the
// reconciliation writer. Resolution is a pure function of (log, receipt,
// registries, ABI-ladder), except for the RPC calls needed to fetch the
// receipt/transaction/block that the log itself doesn't carry.
type Pipeline struct {
	chains     *chainreg.Registry
	chainCtx   map[uint64]*ChainContext
	reconciler *reconciler.Reconciler
	metrics    *metrics.Metrics
}

// NewPipeline builds a Pipeline over every configured chain's context. m may
// be nil, in which case metrics recording is skipped.
func NewPipeline(chains *chainreg.Registry, chainCtx map[uint64]*ChainContext, rec *reconciler.Reconciler, m *metrics.Metrics) *Pipeline {
	return &Pipeline{chains: chains, chainCtx: chainCtx, reconciler: rec, metrics: m}
}

// HandleLog is the callback both the backfill sweep and the tail poller
// invoke for every surviving log. It decodes the log, resolves it into an
// OUT or IN record, and commits it through the reconciler. Errors are
// classified by the caller (backfill propagates, tail retries-then-drops).
func (p *Pipeline) HandleLog(ctx context.Context, chainID uint64, raw types.Log) error {
	cc, ok := p.chainCtx[chainID]
	if !ok {
		return &decoder.InvariantViolationError{EventName: "<log>", Reason: "unconfigured chain"}
	}

	evt, err := decoder.Decode(raw)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordDecodeFailure(cc.Chain.Name)
		}
		return err
	}
	if p.metrics != nil {
		p.metrics.RecordLogDecoded(cc.Chain.Name, evt.Direction.String())
	}

	if evt.Pool != nil && cc.Chain.IsIgnoredPool(*evt.Pool) {
		log.Debug().Str("chain", cc.Chain.Name).Str("pool", evt.Pool.Hex()).Msg("ignoring known test pool")
		return nil
	}

	switch evt.Direction {
	case decoder.DirectionOut:
		return p.handleOut(ctx, cc, evt)
	case decoder.DirectionIn:
		return p.handleIn(ctx, cc, evt)
	default:
		return &decoder.InvariantViolationError{EventName: evt.EventName, Reason: "unknown direction"}
	}
}

// destinationContext resolves the ChainContext for an OUT event's
// destination chain. Only configured chains have a context; for any other
// destination chain id (or a nil one) ok is false.
func (p *Pipeline) destinationContext(chainID *big.Int) (*ChainContext, bool) {
	if chainID == nil {
		return nil, false
	}
	cc, ok := p.chainCtx[chainID.Uint64()]
	return cc, ok
}

// nexusToken is the nUSD pool's index-0 member — the fallback destination
// asset used when a swap fails on the IN side. This is the same address on
// every chain, including Ethereum, so no separate constant is needed: it
// falls out of the pool member list uniformly.
func nexusToken(pools *tokenreg.PoolRegistry) (common.Address, bool) {
	return pools.MemberAt(tokenreg.PoolKindNUSD, 0)
}
