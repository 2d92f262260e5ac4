package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"bridgeindexer/internal/checkpoint"
)

// maxTailReconnectAttempts bounds how many times Worker re-installs a tail
// filter that keeps failing before giving up on a chain entirely.
const maxTailReconnectAttempts = 10

// Worker runs one chain's ingestion lifecycle to completion: catch up via
// Backfill, then hold the tail open indefinitely. It is the per-chain unit
// cmd/bridgeindexer/main.go schedules one of under an errgroup.
func Worker(ctx context.Context, cc *ChainContext, cp *checkpoint.Store, pipeline *Pipeline) error {
	if err := Backfill(ctx, cc, cp, pipeline.HandleLog); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ingestion: %s backfill: %w", cc.Chain.Name, err)
	}

	for attempt := 0; attempt < maxTailReconnectAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			log.Warn().Str("chain", cc.Chain.Name).Int("attempt", attempt).Dur("backoff", backoff).Msg("restarting tail worker")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := Tail(ctx, cc, cp, pipeline.HandleLog)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}
		log.Error().Str("chain", cc.Chain.Name).Err(err).Msg("tail worker stopped")
	}

	return fmt.Errorf("ingestion: %s: exhausted tail reconnect attempts", cc.Chain.Name)
}
