package ingestion

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func buildTransferLog(t *testing.T, token, from, to common.Address, value *big.Int) *types.Log {
	t.Helper()
	var nonIndexed abi.Arguments
	for _, in := range transferEvent.Inputs {
		if !in.Indexed {
			nonIndexed = append(nonIndexed, in)
		}
	}
	data, err := nonIndexed.Pack(value)
	require.NoError(t, err)

	return &types.Log{
		Address: token,
		Topics: []common.Hash{
			transferEvent.ID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}
}

func TestDecodeTransferLogRoundTrips(t *testing.T) {
	token := common.HexToAddress("0xaaaa")
	from := common.HexToAddress("0xbbbb")
	to := common.HexToAddress("0xcccc")
	value := big.NewInt(5000)

	l := buildTransferLog(t, token, from, to, value)
	args, err := decodeTransferLog(l)
	require.NoError(t, err)
	require.Equal(t, from, args.From)
	require.Equal(t, to, args.To)
	require.Equal(t, value, args.Value)
}

func TestDecodeTransferLogRejectsWrongTopicCount(t *testing.T) {
	l := &types.Log{Topics: []common.Hash{transferEvent.ID}}
	_, err := decodeTransferLog(l)
	require.Error(t, err)
}

func TestFindTransferByAddressSkipsOtherTokens(t *testing.T) {
	tokenA := common.HexToAddress("0xaaaa")
	tokenB := common.HexToAddress("0xbbbb")
	from := common.HexToAddress("0x1111")
	to := common.HexToAddress("0x2222")

	logs := []*types.Log{
		buildTransferLog(t, tokenA, from, to, big.NewInt(1)),
		buildTransferLog(t, tokenB, from, to, big.NewInt(2)),
	}

	args, ok := findTransferByAddress(logs, tokenB)
	require.True(t, ok)
	require.Equal(t, big.NewInt(2), args.Value)
}

func TestFindTransferToRequiresRecipientMatch(t *testing.T) {
	token := common.HexToAddress("0xaaaa")
	from := common.HexToAddress("0x1111")
	wrongTo := common.HexToAddress("0x2222")
	rightTo := common.HexToAddress("0x3333")

	logs := []*types.Log{
		buildTransferLog(t, token, from, wrongTo, big.NewInt(10)),
		buildTransferLog(t, token, from, rightTo, big.NewInt(20)),
	}

	args, ok := findTransferTo(logs, token, rightTo)
	require.True(t, ok)
	require.Equal(t, big.NewInt(20), args.Value)

	_, ok = findTransferTo(logs, token, common.HexToAddress("0x4444"))
	require.False(t, ok)
}
