package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chains:
  - name: ethereum
    chain_id: 1
    rpc_url: "http://localhost:8545"
    bridge_address: "0x2796317b0fF8538F253012862c06787Adfb8cEb6"
    nusd_pool: "0x1116898DdA4015eD8dDefb84b6e8Bc24528Af2d8"
    start_block: 13136427
    max_block_range: 5000
persistence:
  postgres_dsn: "postgres://localhost/bridge"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Chains, 1)
	require.Equal(t, uint64(1), cfg.Chains[0].ChainID)
	require.Equal(t, 6379, cfg.Checkpoint.Port)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsMissingChains(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
persistence:
  postgres_dsn: "postgres://localhost/bridge"
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsDuplicateChainID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chains:
  - name: a
    chain_id: 1
    rpc_url: "http://localhost:8545"
    bridge_address: "0xabc"
    max_block_range: 100
  - name: b
    chain_id: 1
    rpc_url: "http://localhost:8546"
    bridge_address: "0xdef"
    max_block_range: 100
persistence:
  postgres_dsn: "postgres://localhost/bridge"
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
