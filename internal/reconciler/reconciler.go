// Package reconciler writes resolved OUT and IN transfer records to
// Postgres and performs the IN-to-OUT correlation by kappa. The write
// policy is pulled out into its own component so the ingestion workers
// (backfill and tail) can share it.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"

	"bridgeindexer/internal/decoder"
	"bridgeindexer/internal/store"
)

// OutRecord is a fully resolved source-chain lock/burn, ready for OUT_SQL.
type OutRecord struct {
	Kappa         common.Hash
	FromTxHash    common.Hash
	FromAddress   common.Address
	ToAddress     common.Address
	SentValue     *big.Int
	FromChainID   uint64
	ToChainID     uint64
	SentTime      int64
	SentToken     common.Address
	ReceivedToken *common.Address
}

// InRecord is a fully resolved destination-chain mint/release, ready for
// IN_SQL (if it matches a pending OUT) or LOST_IN_SQL (if it doesn't).
type InRecord struct {
	Kappa         common.Hash
	ToTxHash      common.Hash
	ToAddress     common.Address
	ReceivedValue *big.Int
	ToChainID     uint64
	ReceivedTime  int64
	ReceivedToken common.Address
	SwapSuccess   *bool
	Fee           *big.Int
}

// Reconciler owns the txs/lost_txs write path.
type Reconciler struct {
	store *store.Store
}

// New builds a Reconciler over an already-migrated Store.
func New(s *store.Store) *Reconciler {
	return &Reconciler{store: s}
}

// WriteOut inserts a new pending txs row. A unique-violation on kappa means
// this exact OUT was already recorded (a checkpoint replay at the resume
// boundary, or a redelivered log) and is treated as success rather than
// failure, the same way a duplicate lost-transfer insert is below.
func (r *Reconciler) WriteOut(ctx context.Context, rec OutRecord) error {
	const stmt = `
		INSERT INTO txs (
			kappa, from_tx_hash, to_tx_hash, from_address, to_address,
			sent_value, received_value, pending,
			from_chain_id, to_chain_id, sent_time, received_time,
			sent_token, received_token, swap_success
		) VALUES ($1, $2, NULL, $3, $4, $5, NULL, true, $6, $7, $8, NULL, $9, $10, NULL)`

	_, err := r.store.Pool().Exec(ctx, stmt,
		rec.Kappa.Bytes(), rec.FromTxHash.Bytes(), rec.FromAddress.Bytes(), rec.ToAddress.Bytes(),
		rec.SentValue.String(), rec.FromChainID, rec.ToChainID, rec.SentTime,
		rec.SentToken.Bytes(), optionalAddressBytes(rec.ReceivedToken),
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			log.Debug().Str("kappa", rec.Kappa.Hex()).Msg("duplicate OUT insert, treating as success")
			return nil
		}
		return fmt.Errorf("reconciler: writing OUT for kappa %s: %w", rec.Kappa.Hex(), err)
	}
	return nil
}

// WriteIn attempts to complete a pending OUT with a matching kappa; if none
// exists, it writes an insert-only lost_txs row instead. Exactly one of the
// two paths executes for any given IN event.
func (r *Reconciler) WriteIn(ctx context.Context, rec InRecord) error {
	const updateStmt = `
		UPDATE txs
		SET to_tx_hash = $1, received_value = $2, pending = false,
		    received_time = $3, swap_success = $4
		WHERE kappa = $5`

	tag, err := r.store.Pool().Exec(ctx, updateStmt,
		rec.ToTxHash.Bytes(), rec.ReceivedValue.String(), rec.ReceivedTime, rec.SwapSuccess, rec.Kappa.Bytes(),
	)
	if err != nil {
		// A raising IN_SQL falls through to the lost path rather than
		// losing the event outright; if the store itself is down the
		// insert fails the same way and the error still propagates.
		log.Warn().Str("kappa", rec.Kappa.Hex()).Err(err).Msg("IN update failed, writing to lost_txs instead")
		return r.writeLost(ctx, rec)
	}

	switch affected := tag.RowsAffected(); {
	case affected == 1:
		return nil
	case affected == 0:
		return r.writeLost(ctx, rec)
	default:
		return &decoder.InvariantViolationError{
			EventName: "IN",
			Reason:    fmt.Sprintf("kappa %s: IN_SQL affected %d rows, expected 0 or 1", rec.Kappa.Hex(), affected),
		}
	}
}

func (r *Reconciler) writeLost(ctx context.Context, rec InRecord) error {
	const stmt = `
		INSERT INTO lost_txs (
			kappa, to_tx_hash, to_address, received_value, to_chain_id,
			received_time, received_token, swap_success, fee
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.store.Pool().Exec(ctx, stmt,
		rec.Kappa.Bytes(), rec.ToTxHash.Bytes(), rec.ToAddress.Bytes(), rec.ReceivedValue.String(),
		rec.ToChainID, rec.ReceivedTime, rec.ReceivedToken.Bytes(), rec.SwapSuccess, feeString(rec.Fee),
	)
	if err != nil {
		if store.IsUniqueViolation(err) {
			log.Debug().Str("kappa", rec.Kappa.Hex()).Msg("duplicate lost_txs insert, treating as success")
			return nil
		}
		return fmt.Errorf("reconciler: writing lost_txs for kappa %s: %w", rec.Kappa.Hex(), err)
	}
	return nil
}

// PendingByKappa reports whether a txs row with this kappa exists and is
// still pending (false when there is no such row). The IN path calls it
// before WriteIn to decide which write metric to record.
func (r *Reconciler) PendingByKappa(ctx context.Context, kappa common.Hash) (bool, error) {
	var pending bool
	err := r.store.Pool().QueryRow(ctx, `SELECT pending FROM txs WHERE kappa = $1`, kappa.Bytes()).Scan(&pending)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reconciler: querying pending state for kappa %s: %w", kappa.Hex(), err)
	}
	return pending, nil
}

func optionalAddressBytes(addr *common.Address) []byte {
	if addr == nil {
		return nil
	}
	return addr.Bytes()
}

func feeString(fee *big.Int) string {
	if fee == nil {
		return "0"
	}
	return fee.String()
}
