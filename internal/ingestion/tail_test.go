package ingestion

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

type pollResult struct {
	logs []types.Log
	err  error
}

// fakeTailRPC scripts a sequence of PollFilter outcomes and counts filter
// installs, so the reinstall-on-poll-error path is observable.
type fakeTailRPC struct {
	fakeRPC
	mu       sync.Mutex
	installs int
	polls    []pollResult
}

func (f *fakeTailRPC) InstallHeadFilter(ctx context.Context, query ethereum.FilterQuery) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs++
	return fmt.Sprintf("0x%x", f.installs), nil
}

func (f *fakeTailRPC) PollFilter(ctx context.Context, filterID string) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.polls) == 0 {
		return nil, nil
	}
	next := f.polls[0]
	f.polls = f.polls[1:]
	return next.logs, next.err
}

func (f *fakeTailRPC) installCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installs
}

// TestTailReinstallsFilterAndAdvancesCheckpoint drives one poll error (which
// must reinstall the filter, not kill the worker) followed by one delivered
// log, and confirms the committed log advanced the checkpoint the same way a
// backfill commit would.
func TestTailReinstallsFilterAndAdvancesCheckpoint(t *testing.T) {
	cp := newTestCheckpoint(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := types.Log{BlockNumber: 7, TxIndex: 1, TxHash: common.HexToHash("0x7")}
	rpc := &fakeTailRPC{
		polls: []pollResult{
			{err: errBoom},
			{logs: []types.Log{delivered}},
		},
	}

	chain := testChain()
	cc := &ChainContext{Chain: chain, Client: rpc}

	seen := make(chan common.Hash, 1)
	done := make(chan error, 1)
	go func() {
		done <- Tail(ctx, cc, cp, func(ctx context.Context, chainID uint64, l types.Log) error {
			seen <- l.TxHash
			return nil
		})
	}()

	select {
	case h := <-seen:
		require.Equal(t, delivered.TxHash, h)
	case <-time.After(10 * time.Second):
		t.Fatal("tail never delivered the polled log")
	}

	// The checkpoint is written after the callback returns; wait for it
	// before cancelling so the write isn't aborted by the cancelled context.
	require.Eventually(t, func() bool {
		p, ok, err := cp.Get(context.Background(), chain.Name, namespaceBridge, chain.BridgeAddress.Hex())
		return err == nil && ok && p.MaxBlockStored == 7
	}, 10*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	require.Equal(t, 2, rpc.installCount())

	point, ok, err := cp.Get(context.Background(), chain.Name, namespaceBridge, chain.BridgeAddress.Hex())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), point.MaxBlockStored)
	require.Equal(t, uint(1), point.TxIndex)
}
