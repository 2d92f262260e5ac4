package ingestion

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"bridgeindexer/internal/chainreg"
	"bridgeindexer/internal/checkpoint"
)

// fakeRPC is a minimal ChainRPC stand-in that serves FilterLogs from a
// fixed in-memory set and a fixed head block, enough to exercise Backfill's
// windowing and resume-boundary logic without dialing a real node.
type fakeRPC struct {
	head    uint64
	logs    []types.Log
	windows [][2]uint64
}

func (f *fakeRPC) BlockNumber(ctx context.Context) (uint64, error) { return f.head, nil }

func (f *fakeRPC) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	from := query.FromBlock.Uint64()
	to := query.ToBlock.Uint64()
	f.windows = append(f.windows, [2]uint64{from, to})
	var out []types.Log
	for _, l := range f.logs {
		if l.BlockNumber >= from && l.BlockNumber <= to {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRPC) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{}, nil
}

func (f *fakeRPC) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, error) {
	return types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), nil), nil
}

func (f *fakeRPC) GetBlockByNumber(ctx context.Context, number uint64) (*types.Header, error) {
	return &types.Header{Number: new(big.Int).SetUint64(number)}, nil
}

func (f *fakeRPC) InstallHeadFilter(ctx context.Context, query ethereum.FilterQuery) (string, error) {
	return "0x1", nil
}

func (f *fakeRPC) PollFilter(ctx context.Context, filterID string) ([]types.Log, error) {
	return nil, nil
}

var errBoom = errors.New("boom")

func newTestCheckpoint(t *testing.T) *checkpoint.Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return checkpoint.New(mr.Addr())
}

func testChain() *chainreg.Chain {
	return &chainreg.Chain{
		Name:          "ethereum",
		ChainID:       1,
		BridgeAddress: common.HexToAddress("0xbridge"),
		StartBlock:    0,
		MaxBlockRange: 10,
	}
}

// TestBackfillSkipsLogsAtOrBeforeCheckpointBoundary exercises the
// resume-boundary dedup rule: a log at exactly the stored checkpoint block
// whose tx index is at or below the stored tx index must not be
// re-delivered, while a later tx index in that same block must be.
func TestBackfillSkipsLogsAtOrBeforeCheckpointBoundary(t *testing.T) {
	cp := newTestCheckpoint(t)
	ctx := context.Background()
	require.NoError(t, cp.Set(ctx, "ethereum", namespaceBridge, common.HexToAddress("0xbridge").Hex(), checkpoint.Point{MaxBlockStored: 5, TxIndex: 2}))

	rpc := &fakeRPC{
		head: 6,
		logs: []types.Log{
			{BlockNumber: 5, TxIndex: 1, TxHash: common.HexToHash("0x1")},
			{BlockNumber: 5, TxIndex: 2, TxHash: common.HexToHash("0x2")},
			{BlockNumber: 5, TxIndex: 3, TxHash: common.HexToHash("0x3")},
			{BlockNumber: 6, TxIndex: 0, TxHash: common.HexToHash("0x4")},
		},
	}

	chain := testChain()
	chain.BridgeAddress = common.HexToAddress("0xbridge")
	cc := &ChainContext{Chain: chain, Client: rpc}

	var seen []common.Hash
	err := Backfill(ctx, cc, cp, func(ctx context.Context, chainID uint64, l types.Log) error {
		seen = append(seen, l.TxHash)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []common.Hash{common.HexToHash("0x3"), common.HexToHash("0x4")}, seen)
}

// TestBackfillFirstRunDeliversStartBlockLog guards the other side of the
// dedup rule: with no stored checkpoint, a log at (configured start block,
// tx index 0) is new and must be delivered, not mistaken for a replay.
func TestBackfillFirstRunDeliversStartBlockLog(t *testing.T) {
	cp := newTestCheckpoint(t)
	ctx := context.Background()

	rpc := &fakeRPC{
		head: 2,
		logs: []types.Log{{BlockNumber: 1, TxIndex: 0, TxHash: common.HexToHash("0x1")}},
	}

	chain := testChain()
	chain.StartBlock = 1
	cc := &ChainContext{Chain: chain, Client: rpc}

	var seen []common.Hash
	err := Backfill(ctx, cc, cp, func(ctx context.Context, chainID uint64, l types.Log) error {
		seen = append(seen, l.TxHash)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []common.Hash{common.HexToHash("0x1")}, seen)
}

// TestBackfillAdvancesCheckpointPerLog confirms the checkpoint store holds
// the last processed log's (block, tx index) after a sweep completes.
func TestBackfillAdvancesCheckpointPerLog(t *testing.T) {
	cp := newTestCheckpoint(t)
	ctx := context.Background()

	rpc := &fakeRPC{
		head: 3,
		logs: []types.Log{
			{BlockNumber: 1, TxIndex: 0, TxHash: common.HexToHash("0x1")},
			{BlockNumber: 3, TxIndex: 2, TxHash: common.HexToHash("0x2")},
		},
	}

	chain := testChain()
	cc := &ChainContext{Chain: chain, Client: rpc}

	err := Backfill(ctx, cc, cp, func(ctx context.Context, chainID uint64, l types.Log) error {
		return nil
	})
	require.NoError(t, err)

	point, ok, err := cp.Get(ctx, "ethereum", namespaceBridge, chain.BridgeAddress.Hex())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(3), point.MaxBlockStored)
	require.Equal(t, uint(2), point.TxIndex)
}

// TestBackfillWindowsAreInclusiveAndAdvanceByWindowPlusOne pins the sweep's
// boundary arithmetic: each get_logs window covers [s, s+W] inclusive, the
// next one starts at s+W+1, and a log sitting exactly on a window edge is
// delivered exactly once.
func TestBackfillWindowsAreInclusiveAndAdvanceByWindowPlusOne(t *testing.T) {
	cp := newTestCheckpoint(t)
	ctx := context.Background()

	rpc := &fakeRPC{
		head: 5,
		logs: []types.Log{
			{BlockNumber: 2, TxIndex: 0, TxHash: common.HexToHash("0x1")},
			{BlockNumber: 3, TxIndex: 0, TxHash: common.HexToHash("0x2")},
			{BlockNumber: 5, TxIndex: 0, TxHash: common.HexToHash("0x3")},
		},
	}

	chain := testChain()
	chain.MaxBlockRange = 2
	cc := &ChainContext{Chain: chain, Client: rpc}

	var seen []common.Hash
	err := Backfill(ctx, cc, cp, func(ctx context.Context, chainID uint64, l types.Log) error {
		seen = append(seen, l.TxHash)
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, [][2]uint64{{0, 2}, {3, 5}}, rpc.windows)
	require.Equal(t, []common.Hash{
		common.HexToHash("0x1"),
		common.HexToHash("0x2"),
		common.HexToHash("0x3"),
	}, seen)
}

// TestBackfillPropagatesHandlerError confirms backfill (unlike tail) does
// not swallow a handler failure after retries are exhausted.
func TestBackfillPropagatesHandlerError(t *testing.T) {
	cp := newTestCheckpoint(t)
	ctx := context.Background()

	rpc := &fakeRPC{
		head: 1,
		logs: []types.Log{{BlockNumber: 1, TxIndex: 0, TxHash: common.HexToHash("0x1")}},
	}

	chain := testChain()
	cc := &ChainContext{Chain: chain, Client: rpc}

	calls := 0
	err := Backfill(ctx, cc, cp, func(ctx context.Context, chainID uint64, l types.Log) error {
		calls++
		return errBoom
	})
	require.Error(t, err)
	require.Equal(t, maxCallbackAttempts, calls)
}
