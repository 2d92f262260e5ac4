package ingestion

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"bridgeindexer/internal/decoder"
	"bridgeindexer/internal/reconciler"
	"bridgeindexer/internal/tokenreg"
)

// handleOut resolves a decoded OUT event into a reconciler.OutRecord and
// writes it, following a five-step resolution: pool kind, sent token, sent
// value, received token, and destination address.
func (p *Pipeline) handleOut(ctx context.Context, src *ChainContext, evt *decoder.DecodedEvent) error {
	if !evt.HasKappa {
		// Pre-kappa bridge deployments can't be correlated under this
		// schema's kappa-primary-key design; no legacy fallback matcher
		// is implemented. Nothing downstream of this indexer consumes
		// an un-correlatable OUT, so it is dropped rather than written
		// with a zero kappa that would collide across chains.
		log.Debug().Str("chain", src.Chain.Name).Str("event", evt.EventName).Msg("dropping OUT without kappa, no legacy matcher configured")
		return nil
	}

	receipt, err := src.Client.GetTransactionReceipt(ctx, evt.TxHash)
	if err != nil {
		return fmt.Errorf("ingestion: OUT %s: fetching receipt: %w", evt.TxHash.Hex(), err)
	}
	tx, err := src.Client.TransactionByHash(ctx, evt.TxHash)
	if err != nil {
		return fmt.Errorf("ingestion: OUT %s: fetching transaction: %w", evt.TxHash.Hex(), err)
	}
	header, err := src.Client.GetBlockByNumber(ctx, evt.BlockNumber)
	if err != nil {
		return fmt.Errorf("ingestion: OUT %s: fetching block: %w", evt.TxHash.Hex(), err)
	}

	fromAddr, err := senderAddress(tx)
	if err != nil {
		return fmt.Errorf("ingestion: OUT %s: %w", evt.TxHash.Hex(), err)
	}

	dest, ok := p.destinationContext(evt.ChainID)
	if !ok {
		return fmt.Errorf("ingestion: OUT %s: unknown destination chain id %s", evt.TxHash.Hex(), evt.ChainID)
	}

	poolKind := resolveOutPoolKind(evt, src.Tokens, dest.Pools)

	sentToken, receivedToken, noSwap, err := resolveOutTokens(evt, receipt, poolKind, dest.Pools)
	if err != nil {
		return fmt.Errorf("ingestion: OUT %s: %w", evt.TxHash.Hex(), err)
	}

	sentValue := evt.Amount
	if !noSwap {
		sentValue, err = resolveOutSentValue(receipt, sentToken)
		if err != nil {
			return fmt.Errorf("ingestion: OUT %s: %w", evt.TxHash.Hex(), err)
		}
	}

	rec := reconciler.OutRecord{
		Kappa:         evt.Kappa,
		FromTxHash:    evt.TxHash,
		FromAddress:   fromAddr,
		ToAddress:     evt.To,
		SentValue:     sentValue,
		FromChainID:   src.Chain.ChainID,
		ToChainID:     evt.ChainID.Uint64(),
		SentTime:      int64(header.Time),
		SentToken:     sentToken,
		ReceivedToken: &receivedToken,
	}
	if err := p.reconciler.WriteOut(ctx, rec); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.RecordOutWrite(src.Chain.Name)
		p.metrics.RecordEventLatency(src.Chain.Name, time.Unix(int64(header.Time), 0))
	}
	return nil
}

// resolveOutPoolKind resolves which pool an OUT event concerns: the pool
// override (when the event carries one) is resolved against the
// destination chain's pools; absent an override, a source-chain token
// whose symbol mentions "eth" selects the nETH pool, otherwise nUSD.
func resolveOutPoolKind(evt *decoder.DecodedEvent, srcTokens *tokenreg.Registry, destPools *tokenreg.PoolRegistry) tokenreg.PoolKind {
	if evt.Pool != nil {
		if kind, ok := destPools.KindOf(*evt.Pool); ok {
			return kind
		}
	}
	if info, ok := srcTokens.Lookup(evt.Token); ok && strings.Contains(strings.ToLower(info.Symbol), "eth") {
		return tokenreg.PoolKindNETH
	}
	return tokenreg.PoolKindNUSD
}

// resolveOutTokens resolves the sent and received tokens for an OUT event.
// noSwap reports whether the caller should use args.amount directly (true
// for TokenRedeem/TokenDeposit) rather than scanning the receipt for a
// Transfer.
func resolveOutTokens(evt *decoder.DecodedEvent, receipt *types.Receipt, poolKind tokenreg.PoolKind, destPools *tokenreg.PoolRegistry) (sent, received common.Address, noSwap bool, err error) {
	switch evt.EventName {
	case "TokenRedeem", "TokenDeposit":
		return evt.Token, evt.Token, true, nil

	case "TokenRedeemAndRemove":
		if evt.SwapTokenIndex == nil {
			return common.Address{}, common.Address{}, false, fmt.Errorf("TokenRedeemAndRemove missing swapTokenIndex")
		}
		received, ok := destPools.MemberAt(poolKind, *evt.SwapTokenIndex)
		if !ok {
			return common.Address{}, common.Address{}, false, fmt.Errorf("swapTokenIndex %d out of range for %s pool", *evt.SwapTokenIndex, poolKind)
		}
		return evt.Token, received, false, nil

	case "TokenRedeemAndSwap", "TokenDepositAndSwap":
		if evt.TokenIndexTo == nil {
			return common.Address{}, common.Address{}, false, fmt.Errorf("%s missing tokenIndexTo", evt.EventName)
		}
		received, ok := destPools.MemberAt(poolKind, *evt.TokenIndexTo)
		if !ok {
			return common.Address{}, common.Address{}, false, fmt.Errorf("tokenIndexTo %d out of range for %s pool", *evt.TokenIndexTo, poolKind)
		}
		if len(receipt.Logs) == 0 {
			return common.Address{}, common.Address{}, false, fmt.Errorf("%s: receipt has no logs to recover wrapped sent token", evt.EventName)
		}
		// The wrapped path: the user's literal sent token only appears
		// as the address of the receipt's first log, not in the event
		// args.
		return receipt.Logs[0].Address, received, false, nil

	default:
		return common.Address{}, common.Address{}, false, fmt.Errorf("unhandled OUT event %s", evt.EventName)
	}
}

// resolveOutSentValue recovers the sent amount for a swap-path OUT event:
// decode the first receipt log as a Transfer, falling back to a scan for
// any Transfer of sentToken if that log isn't one.
func resolveOutSentValue(receipt *types.Receipt, sentToken common.Address) (*big.Int, error) {
	if len(receipt.Logs) > 0 {
		if args, err := decodeTransferLog(receipt.Logs[0]); err == nil {
			return args.Value, nil
		}
	}
	if args, ok := findTransferByAddress(receipt.Logs, sentToken); ok {
		return args.Value, nil
	}
	return nil, &decoder.DecodeIncompleteError{EventName: "Transfer", Attempts: []error{fmt.Errorf("no Transfer log found for sent token %s", sentToken.Hex())}}
}

// senderAddress recovers a transaction's sender address by signature
// recovery.
func senderAddress(tx *types.Transaction) (common.Address, error) {
	signer := types.LatestSignerForChainID(tx.ChainId())
	addr, err := types.Sender(signer, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering sender: %w", err)
	}
	return addr, nil
}
