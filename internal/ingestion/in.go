package ingestion

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"bridgeindexer/internal/decoder"
	"bridgeindexer/internal/reconciler"
	"bridgeindexer/internal/tokenreg"
)

// handleIn resolves a decoded IN event into a reconciler.InRecord and
// writes it.
func (p *Pipeline) handleIn(ctx context.Context, dest *ChainContext, evt *decoder.DecodedEvent) error {
	receipt, err := dest.Client.GetTransactionReceipt(ctx, evt.TxHash)
	if err != nil {
		return fmt.Errorf("ingestion: IN %s: fetching receipt: %w", evt.TxHash.Hex(), err)
	}
	tx, err := dest.Client.TransactionByHash(ctx, evt.TxHash)
	if err != nil {
		return fmt.Errorf("ingestion: IN %s: fetching transaction: %w", evt.TxHash.Hex(), err)
	}
	header, err := dest.Client.GetBlockByNumber(ctx, evt.BlockNumber)
	if err != nil {
		return fmt.Errorf("ingestion: IN %s: fetching block: %w", evt.TxHash.Hex(), err)
	}

	poolKind, poolAddr, err := resolveInPoolKind(evt, tx, dest.Pools)
	if err != nil {
		return fmt.Errorf("ingestion: IN %s: %w", evt.TxHash.Hex(), err)
	}
	if poolAddr != nil && dest.Chain.IsIgnoredPool(*poolAddr) {
		log.Debug().Str("chain", dest.Chain.Name).Str("pool", poolAddr.Hex()).Msg("ignoring known test pool")
		return nil
	}

	receivedToken, direct, err := resolveInToken(evt, poolKind, dest.Pools)
	if err != nil {
		return fmt.Errorf("ingestion: IN %s: %w", evt.TxHash.Hex(), err)
	}

	receivedValue := evt.Amount
	if !direct {
		receivedValue, err = resolveInReceivedValue(evt, receipt, receivedToken, dest.Pools)
		if err != nil {
			return fmt.Errorf("ingestion: IN %s: %w", evt.TxHash.Hex(), err)
		}
	}

	rec := reconciler.InRecord{
		Kappa:         evt.Kappa,
		ToTxHash:      evt.TxHash,
		ToAddress:     evt.To,
		ReceivedValue: receivedValue,
		ToChainID:     dest.Chain.ChainID,
		ReceivedTime:  int64(header.Time),
		ReceivedToken: receivedToken,
		SwapSuccess:   evt.SwapSuccess,
		Fee:           evt.Fee,
	}

	wasPending, pendingErr := p.reconciler.PendingByKappa(ctx, evt.Kappa)
	if err := p.reconciler.WriteIn(ctx, rec); err != nil {
		return err
	}
	if p.metrics != nil {
		if pendingErr == nil && wasPending {
			p.metrics.RecordInWrite(dest.Chain.Name)
		} else {
			p.metrics.RecordLostWrite(dest.Chain.Name)
		}
		p.metrics.RecordEventLatency(dest.Chain.Name, time.Unix(int64(header.Time), 0))
	}
	return nil
}

// resolveInPoolKind resolves which pool an IN event's swap ran against: an
// explicit pool arg on the event overrides the default; absent one,
// DecodeFunctionPool recovers the same override from the validator
// transaction's calldata, for ABI generations whose event doesn't carry a
// pool field at all.
func resolveInPoolKind(evt *decoder.DecodedEvent, tx *types.Transaction, pools *tokenreg.PoolRegistry) (tokenreg.PoolKind, *common.Address, error) {
	if evt.Pool != nil {
		if kind, ok := pools.KindOf(*evt.Pool); ok {
			return kind, evt.Pool, nil
		}
		return tokenreg.PoolKindNUSD, evt.Pool, nil
	}

	pool, err := decoder.DecodeFunctionPool(evt.EventName, evt.Generation, tx.Data())
	if err != nil {
		return "", nil, fmt.Errorf("recovering pool from calldata: %w", err)
	}
	if pool == nil {
		return tokenreg.PoolKindNUSD, nil, nil
	}
	if kind, ok := pools.KindOf(*pool); ok {
		return kind, pool, nil
	}
	return tokenreg.PoolKindNUSD, pool, nil
}

// resolveInToken resolves which token an IN event released. direct reports
// whether the caller should use args.amount directly (true for
// TokenWithdraw/TokenMint) rather than scanning the receipt for a
// Transfer.
func resolveInToken(evt *decoder.DecodedEvent, poolKind tokenreg.PoolKind, pools *tokenreg.PoolRegistry) (token common.Address, direct bool, err error) {
	switch evt.EventName {
	case "TokenWithdraw", "TokenMint":
		return evt.Token, true, nil

	case "TokenWithdrawAndRemove":
		if evt.SwapTokenIndex == nil {
			return common.Address{}, false, fmt.Errorf("TokenWithdrawAndRemove missing swapTokenIndex")
		}
		token, ok := pools.MemberAt(poolKind, *evt.SwapTokenIndex)
		if !ok {
			return common.Address{}, false, fmt.Errorf("swapTokenIndex %d out of range for %s pool", *evt.SwapTokenIndex, poolKind)
		}
		return token, false, nil

	default: // TokenMintAndSwap
		if evt.TokenIndexTo == nil {
			return common.Address{}, false, fmt.Errorf("%s missing tokenIndexTo", evt.EventName)
		}
		token, ok := pools.MemberAt(poolKind, *evt.TokenIndexTo)
		if !ok {
			return common.Address{}, false, fmt.Errorf("tokenIndexTo %d out of range for %s pool", *evt.TokenIndexTo, poolKind)
		}
		return token, false, nil
	}
}

// resolveInReceivedValue scans the receipt for a Transfer of receivedToken
// to the recipient; on failure, or when the swap itself failed, it
// re-scans for the nexus asset instead (the bridge falls back to
// releasing the unswapped synthetic when the destination-side swap
// reverts).
func resolveInReceivedValue(evt *decoder.DecodedEvent, receipt *types.Receipt, receivedToken common.Address, pools *tokenreg.PoolRegistry) (*big.Int, error) {
	swapFailed := evt.SwapSuccess != nil && !*evt.SwapSuccess

	if !swapFailed {
		if args, ok := findTransferTo(receipt.Logs, receivedToken, evt.To); ok {
			return args.Value, nil
		}
	}

	nexus, ok := nexusToken(pools)
	if !ok {
		return nil, &decoder.DecodeIncompleteError{EventName: "Transfer", Attempts: []error{fmt.Errorf("no nexus token configured for fallback scan")}}
	}
	if args, ok := findTransferTo(receipt.Logs, nexus, evt.To); ok {
		return args.Value, nil
	}

	return nil, &decoder.DecodeIncompleteError{EventName: "Transfer", Attempts: []error{fmt.Errorf("no Transfer to %s found for %s or nexus token", evt.To.Hex(), receivedToken.Hex())}}
}
