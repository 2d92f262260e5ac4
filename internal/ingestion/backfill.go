package ingestion

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"bridgeindexer/internal/checkpoint"
	"bridgeindexer/internal/decoder"
	"bridgeindexer/internal/retry"
)

// maxCallbackAttempts bounds the retry wrapper around each surviving log's
// pipeline callback: exponential backoff of 2^n seconds, up to 3 attempts,
// then log and drop (tail) or propagate (backfill).
const maxCallbackAttempts = 3

// namespaceBridge is the checkpoint namespace for the bridge contract's own
// log stream, as distinct from a chain's nusdpool/nethpool watchers.
const namespaceBridge = "bridge"

// Backfill sweeps [start, head] in fixed-size windows, emitting every
// surviving log to handle and advancing the checkpoint after each one
// commits.
func Backfill(ctx context.Context, cc *ChainContext, cp *checkpoint.Store, handle func(context.Context, uint64, types.Log) error) error {
	point, found, err := cp.Get(ctx, cc.Chain.Name, namespaceBridge, cc.Chain.BridgeAddress.Hex())
	if err != nil {
		return err
	}

	// The resume-boundary dedup rule only applies when this sweep actually
	// resumes from a stored checkpoint; on a first run from the configured
	// start block, a log at (start, tx index 0) is new, not a replay.
	start := cc.Chain.StartBlock
	checkpointTxIndex := uint(0)
	resuming := false
	if found && point.MaxBlockStored >= start {
		start = point.MaxBlockStored
		checkpointTxIndex = point.TxIndex
		resuming = true
	}
	initialBlock := start

	head, err := cc.Client.BlockNumber(ctx)
	if err != nil {
		return err
	}

	window := cc.Chain.MaxBlockRange
	log.Info().Str("chain", cc.Chain.Name).Uint64("start", start).Uint64("head", head).Msg("backfill starting")

	for start < head {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		to := start + window
		if to > head {
			to = head
		}

		logs, err := cc.Client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(start),
			ToBlock:   new(big.Int).SetUint64(to),
			Addresses: []common.Address{cc.Chain.BridgeAddress},
			Topics:    [][]common.Hash{decoder.AllTopics()},
		})
		if err != nil {
			return err
		}

		for _, l := range logs {
			if resuming && l.BlockNumber == initialBlock && l.TxIndex <= checkpointTxIndex {
				continue
			}

			if err := retry.Do(ctx, maxCallbackAttempts, func() error {
				return handle(ctx, cc.Chain.ChainID, l)
			}); err != nil {
				return err
			}

			if err := cp.Set(ctx, cc.Chain.Name, namespaceBridge, cc.Chain.BridgeAddress.Hex(), checkpoint.Point{
				MaxBlockStored: l.BlockNumber,
				TxIndex:        l.TxIndex,
			}); err != nil {
				return err
			}
			if cc.Metrics != nil {
				cc.Metrics.SetCheckpointBlock(cc.Chain.Name, namespaceBridge, l.BlockNumber)
			}
		}

		if cc.Metrics != nil {
			cc.Metrics.SetBackfillLag(cc.Chain.Name, head-to)
		}

		log.Debug().Str("chain", cc.Chain.Name).Uint64("window_start", start).Uint64("window_end", to).Int("logs", len(logs)).Msg("backfill window processed")

		// The block at s+W is processed exactly once by this window, so
		// the next window starts one block past it rather than
		// re-scanning it.
		start = to + 1
	}

	log.Info().Str("chain", cc.Chain.Name).Uint64("head", head).Msg("backfill complete")
	return nil
}
