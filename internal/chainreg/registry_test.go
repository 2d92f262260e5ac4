package chainreg

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"bridgeindexer/internal/config"
)

func testConfig() []config.ChainConfig {
	return []config.ChainConfig{
		{
			Name:          "ethereum",
			ChainID:       1,
			RPCURL:        "http://localhost:8545",
			BridgeAddress: "0x2796317b0fF8538F253012862c06787Adfb8cEb6",
			NUSDPool:      "0x1116898DdA4015eD8dDefb84b6e8Bc24528Af2d8",
			StartBlock:    13136427,
		},
		{
			Name:                 "polygon",
			ChainID:              137,
			RPCURL:               "http://localhost:8546",
			BridgeAddress:        "0x8F5BBB2BB8c2Ee94639E55d5F41de9b4839C1280",
			MaxBlockRange:        2048,
			RequiresPOAExtension: true,
			IgnoredPoolAddresses: []string{"0x0000000000000000000000000000000000001010"},
		},
	}
}

func TestNewAppliesDefaultWindow(t *testing.T) {
	reg, err := New(testConfig())
	require.NoError(t, err)

	eth, ok := reg.ByID(1)
	require.True(t, ok)
	require.Equal(t, uint64(defaultMaxBlockRange), eth.MaxBlockRange)
	require.NotNil(t, eth.NUSDPool)
	require.Nil(t, eth.NETHPool)

	polygon, ok := reg.ByID(137)
	require.True(t, ok)
	require.Equal(t, uint64(2048), polygon.MaxBlockRange)
	require.True(t, polygon.RequiresPOAExtension)
}

func TestNewRejectsDuplicateChainID(t *testing.T) {
	cfg := testConfig()
	cfg[1].ChainID = 1
	_, err := New(cfg)
	require.Error(t, err)
}

func TestByNameIsCaseInsensitive(t *testing.T) {
	reg, err := New(testConfig())
	require.NoError(t, err)

	c, ok := reg.ByName("Ethereum")
	require.True(t, ok)
	require.Equal(t, uint64(1), c.ChainID)
}

func TestIsIgnoredPoolMatchesConfiguredAddress(t *testing.T) {
	reg, err := New(testConfig())
	require.NoError(t, err)

	polygon, ok := reg.ByID(137)
	require.True(t, ok)
	require.True(t, polygon.IsIgnoredPool(common.HexToAddress("0x0000000000000000000000000000000000001010")))
	require.False(t, polygon.IsIgnoredPool(common.HexToAddress("0x0000000000000000000000000000000000001011")))
}
