package ingestion

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"bridgeindexer/internal/decoder"
	"bridgeindexer/internal/tokenreg"
)

func uint8p(v uint8) *uint8 { return &v }
func boolp(v bool) *bool    { return &v }

// testPoolRegistry builds a PoolRegistry directly from a fixed member list,
// bypassing on-chain discovery, the same way the decoder tests build
// DecodedEvent fixtures by hand instead of dialing a node.
func testPoolRegistry(t *testing.T, kind tokenreg.PoolKind, members ...common.Address) *tokenreg.PoolRegistry {
	t.Helper()
	return tokenreg.NewPoolRegistryFromMembers(nil, map[tokenreg.PoolKind][]common.Address{kind: members})
}

func TestResolveOutTokensRedeemUsesArgsDirectly(t *testing.T) {
	token := common.HexToAddress("0xaaaa")
	evt := &decoder.DecodedEvent{EventName: "TokenRedeem", Token: token}

	sent, received, noSwap, err := resolveOutTokens(evt, &types.Receipt{}, tokenreg.PoolKindNUSD, nil)
	require.NoError(t, err)
	require.True(t, noSwap)
	require.Equal(t, token, sent)
	require.Equal(t, token, received)
}

func TestResolveOutTokensRedeemAndRemoveUsesSwapTokenIndex(t *testing.T) {
	token := common.HexToAddress("0xaaaa")
	member := common.HexToAddress("0xbbbb")
	pools := testPoolRegistry(t, tokenreg.PoolKindNUSD, common.HexToAddress("0x0"), member)

	evt := &decoder.DecodedEvent{EventName: "TokenRedeemAndRemove", Token: token, SwapTokenIndex: uint8p(1)}

	sent, received, noSwap, err := resolveOutTokens(evt, &types.Receipt{}, tokenreg.PoolKindNUSD, pools)
	require.NoError(t, err)
	require.False(t, noSwap)
	require.Equal(t, token, sent)
	require.Equal(t, member, received)
}

func TestResolveOutTokensDepositAndSwapUsesWrappedReceiptLog(t *testing.T) {
	wrapped := common.HexToAddress("0xdddd")
	member := common.HexToAddress("0xeeee")
	pools := testPoolRegistry(t, tokenreg.PoolKindNUSD, common.HexToAddress("0x0"), member)

	evt := &decoder.DecodedEvent{EventName: "TokenDepositAndSwap", TokenIndexTo: uint8p(1)}
	receipt := &types.Receipt{Logs: []*types.Log{{Address: wrapped}}}

	sent, received, noSwap, err := resolveOutTokens(evt, receipt, tokenreg.PoolKindNUSD, pools)
	require.NoError(t, err)
	require.False(t, noSwap)
	require.Equal(t, wrapped, sent)
	require.Equal(t, member, received)
}

func TestResolveOutTokensRedeemAndSwapOutOfRangeIndexErrors(t *testing.T) {
	pools := testPoolRegistry(t, tokenreg.PoolKindNUSD, common.HexToAddress("0x0"))
	evt := &decoder.DecodedEvent{EventName: "TokenRedeemAndSwap", TokenIndexTo: uint8p(5)}

	_, _, _, err := resolveOutTokens(evt, &types.Receipt{}, tokenreg.PoolKindNUSD, pools)
	require.Error(t, err)
}

func TestResolveOutPoolKindPrefersDestinationPoolOverride(t *testing.T) {
	pool := common.HexToAddress("0xpool")
	destPools := tokenreg.NewPoolRegistryFromMembers(
		map[tokenreg.PoolKind]common.Address{tokenreg.PoolKindNETH: pool},
		nil,
	)

	evt := &decoder.DecodedEvent{Pool: &pool}
	kind := resolveOutPoolKind(evt, nil, destPools)
	require.Equal(t, tokenreg.PoolKindNETH, kind)
}

func TestResolveOutSentValueFallsBackToAddressScan(t *testing.T) {
	sentToken := common.HexToAddress("0xsent")
	from := common.HexToAddress("0xfrom")
	to := common.HexToAddress("0xto")

	// First log isn't a Transfer at all; the second is the real one.
	notATransfer := &types.Log{Address: sentToken, Topics: []common.Hash{common.HexToHash("0xnope")}}
	realTransfer := buildTransferLog(t, sentToken, from, to, big.NewInt(777))

	receipt := &types.Receipt{Logs: []*types.Log{notATransfer, realTransfer}}
	value, err := resolveOutSentValue(receipt, sentToken)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(777), value)
}

func TestResolveInTokenDirectForMintAndWithdraw(t *testing.T) {
	token := common.HexToAddress("0x0a0a")
	for _, name := range []string{"TokenMint", "TokenWithdraw"} {
		evt := &decoder.DecodedEvent{EventName: name, Token: token}

		got, direct, err := resolveInToken(evt, tokenreg.PoolKindNUSD, nil)
		require.NoError(t, err)
		require.True(t, direct)
		require.Equal(t, token, got)
	}
}

func TestResolveInTokenSwapUsesTokenIndexTo(t *testing.T) {
	member := common.HexToAddress("0x0e0e")
	pools := testPoolRegistry(t, tokenreg.PoolKindNUSD, common.HexToAddress("0x0"), member)
	evt := &decoder.DecodedEvent{EventName: "TokenMintAndSwap", TokenIndexTo: uint8p(1)}

	got, direct, err := resolveInToken(evt, tokenreg.PoolKindNUSD, pools)
	require.NoError(t, err)
	require.False(t, direct)
	require.Equal(t, member, got)
}

func TestResolveInReceivedValueFallsBackToNexusOnSwapFailure(t *testing.T) {
	receivedToken := common.HexToAddress("0x0c0c")
	nexus := common.HexToAddress("0x0b0b")
	to := common.HexToAddress("0x0d0d")
	from := common.HexToAddress("0x0f0f")

	pools := testPoolRegistry(t, tokenreg.PoolKindNUSD, nexus)

	evt := &decoder.DecodedEvent{To: to, SwapSuccess: boolp(false)}
	receipt := &types.Receipt{Logs: []*types.Log{buildTransferLog(t, nexus, from, to, big.NewInt(42))}}

	value, err := resolveInReceivedValue(evt, receipt, receivedToken, pools)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), value)
}

func TestResolveInPoolKindDefaultsToNUSDWhenCalldataCarriesNoPool(t *testing.T) {
	pools := testPoolRegistry(t, tokenreg.PoolKindNUSD, common.HexToAddress("0x0"))
	evt := &decoder.DecodedEvent{EventName: "TokenMint", Generation: "older"}
	tx := types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), nil)

	kind, addr, err := resolveInPoolKind(evt, tx, pools)
	require.NoError(t, err)
	require.Nil(t, addr)
	require.Equal(t, tokenreg.PoolKindNUSD, kind)
}
