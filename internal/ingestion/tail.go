package ingestion

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"bridgeindexer/internal/checkpoint"
	"bridgeindexer/internal/decoder"
	"bridgeindexer/internal/retry"
)

// tailPollInterval is the fixed cadence at which the tail poller calls
// eth_getFilterChanges.
const tailPollInterval = 2 * time.Second

// Tail installs a head filter on the bridge contract and polls it
// indefinitely, handing every new log to handle. Unlike Backfill it never
// returns on a handler error: the tail path logs and continues so one bad
// log doesn't stall the live feed behind it, while backfill's error
// propagates because catching up is allowed to fail loudly and retry from
// its last checkpoint. Logs that do commit advance the checkpoint the same
// way backfill's do, so a restart resumes past them instead of re-sweeping
// everything the tail already processed.
func Tail(ctx context.Context, cc *ChainContext, cp *checkpoint.Store, handle func(context.Context, uint64, types.Log) error) error {
	filterID, err := installFilter(ctx, cc)
	if err != nil {
		return err
	}
	if cc.Metrics != nil {
		cc.Metrics.SetTailConnected(cc.Chain.Name, true)
		defer cc.Metrics.SetTailConnected(cc.Chain.Name, false)
	}

	ticker := time.NewTicker(tailPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			logs, err := cc.Client.PollFilter(ctx, filterID)
			if err != nil {
				// A stale or evicted filter (common after an RPC
				// provider restart) surfaces as an error on every
				// subsequent poll; re-install and keep going rather
				// than tearing down the whole chain's tail worker.
				log.Warn().Str("chain", cc.Chain.Name).Err(err).Msg("tail filter poll failed, reinstalling")
				filterID, err = installFilter(ctx, cc)
				if err != nil {
					return err
				}
				continue
			}

			for _, l := range logs {
				err := retry.Do(ctx, maxCallbackAttempts, func() error {
					return handle(ctx, cc.Chain.ChainID, l)
				})
				if err != nil {
					log.Error().Str("chain", cc.Chain.Name).Str("tx", l.TxHash.Hex()).Err(err).Msg("dropping tail log after exhausting retries")
					continue
				}

				if err := cp.Set(ctx, cc.Chain.Name, namespaceBridge, cc.Chain.BridgeAddress.Hex(), checkpoint.Point{
					MaxBlockStored: l.BlockNumber,
					TxIndex:        l.TxIndex,
				}); err != nil {
					log.Error().Str("chain", cc.Chain.Name).Err(err).Msg("failed to advance checkpoint for tail log")
					continue
				}
				if cc.Metrics != nil {
					cc.Metrics.SetCheckpointBlock(cc.Chain.Name, namespaceBridge, l.BlockNumber)
				}
			}
		}
	}
}

func installFilter(ctx context.Context, cc *ChainContext) (string, error) {
	return cc.Client.InstallHeadFilter(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{cc.Chain.BridgeAddress},
		Topics:    [][]common.Hash{decoder.AllTopics()},
	})
}
