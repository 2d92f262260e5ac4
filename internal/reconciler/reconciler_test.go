package reconciler

import (
	"context"
	"math/big"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"bridgeindexer/internal/store"
)

// newTestStore connects to a real Postgres instance named by
// RECONCILER_TEST_DSN. The OUT/IN write policy depends on Postgres's
// unique-violation error code and row-affected counts, neither of which a
// fake driver reproduces faithfully, so this suite is an integration test
// rather than a unit test — it skips when no test database is configured.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := os.Getenv("RECONCILER_TEST_DSN")
	if dsn == "" {
		t.Skip("RECONCILER_TEST_DSN not set, skipping Postgres-backed reconciler test")
	}

	s, err := store.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = s.Pool().Exec(context.Background(), "TRUNCATE txs, lost_txs")
		s.Close()
	})
	return s
}

func sampleOut(kappa common.Hash) OutRecord {
	return OutRecord{
		Kappa:       kappa,
		FromTxHash:  common.HexToHash("0x081c9187000000000000000000000000000000000000000000000000000aa6d0"),
		FromAddress: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		ToAddress:   common.HexToAddress("0x2222222222222222222222222222222222222222"),
		SentValue:   big.NewInt(20000000),
		FromChainID: 137,
		ToChainID:   250,
		SentTime:    1_700_000_000,
		SentToken:   common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
	}
}

func TestWriteOutThenMatchingInCompletesRow(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	ctx := context.Background()

	kappa := common.HexToHash("0x7e129c6b00000000000000000000000000000000000000000000000000a496")
	require.NoError(t, r.WriteOut(ctx, sampleOut(kappa)))

	pending, err := r.PendingByKappa(ctx, kappa)
	require.NoError(t, err)
	require.True(t, pending)

	swapSuccess := true
	in := InRecord{
		Kappa:         kappa,
		ToTxHash:      common.HexToHash("0x3c6cd6470000000000000000000000000000000000000000000000000000902"),
		ToAddress:     common.HexToAddress("0x2222222222222222222222222222222222222222"),
		ReceivedValue: big.NewInt(2499107103118779897),
		ToChainID:     1,
		ReceivedTime:  1_700_000_500,
		ReceivedToken: common.HexToAddress("0x3333333333333333333333333333333333333333"),
		SwapSuccess:   &swapSuccess,
		Fee:           big.NewInt(1000),
	}
	require.NoError(t, r.WriteIn(ctx, in))

	pending, err = r.PendingByKappa(ctx, kappa)
	require.NoError(t, err)
	require.False(t, pending)
}

func TestWriteInWithoutMatchingOutGoesToLostTxs(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	ctx := context.Background()

	kappa := common.HexToHash("0xa5c27c790000000000000000000000000000000000000000000000000000007455")
	in := InRecord{
		Kappa:         kappa,
		ToTxHash:      common.HexToHash("0x2ab145d60000000000000000000000000000000000000000000000000000a6e1"),
		ToAddress:     common.HexToAddress("0x4444444444444444444444444444444444444444"),
		ReceivedValue: big.NewInt(120131612094266528),
		ToChainID:     137,
		ReceivedTime:  1_700_000_100,
		ReceivedToken: common.HexToAddress("0xd8cA34fd379d9ca3C6Ee3b3905678320F5b45195"),
	}
	require.NoError(t, r.WriteIn(ctx, in))

	var count int
	err := s.Pool().QueryRow(ctx, "SELECT count(*) FROM lost_txs WHERE kappa = $1", kappa.Bytes()).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestReplayingSameInIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	ctx := context.Background()

	kappa := common.HexToHash("0xa1ce627f00000000000000000000000000000000000000000000000000c83b")
	success := false
	in := InRecord{
		Kappa:         kappa,
		ToTxHash:      common.HexToHash("0x79bef2800000000000000000000000000000000000000000000000000000c515"),
		ToAddress:     common.HexToAddress("0x5555555555555555555555555555555555555555"),
		ReceivedValue: big.NewInt(1000000000000000000),
		ToChainID:     137,
		ReceivedTime:  1_700_000_200,
		ReceivedToken: common.HexToAddress("0x6666666666666666666666666666666666666666"),
		SwapSuccess:   &success,
	}

	require.NoError(t, r.WriteIn(ctx, in))
	require.NoError(t, r.WriteIn(ctx, in))

	var count int
	err := s.Pool().QueryRow(ctx, "SELECT count(*) FROM lost_txs WHERE kappa = $1", kappa.Bytes()).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
