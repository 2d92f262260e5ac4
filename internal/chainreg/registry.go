// Package chainreg holds the immutable, process-wide view of which chains
// this indexer watches: their bridge addresses, pool addresses, and
// per-chain ingestion policy. It is built once at startup from config and
// passed by reference into the ingestor, decoder, and reconciler — there
// is no global mutable chain table.
package chainreg

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"bridgeindexer/internal/config"
)

// defaultMaxBlockRange is used when a chain entry is loaded from config
// without specifying its own backfill window. Good values vary per chain
// (RPC providers cap eth_getLogs ranges differently), so the registry
// keeps this data-driven rather than hard-coded per chain name.
const defaultMaxBlockRange = 5000

// Chain is the immutable configuration of one indexed chain.
type Chain struct {
	Name                 string
	ChainID              uint64
	RPCURL               string
	BridgeAddress        common.Address
	NUSDPool             *common.Address
	NETHPool             *common.Address
	StartBlock           uint64
	MaxBlockRange        uint64
	RequiresPOAExtension bool
	IgnoredPoolAddresses map[common.Address]struct{}
}

// Registry is the immutable chain table, keyed both by chain ID and name.
type Registry struct {
	byID   map[uint64]*Chain
	byName map[string]*Chain
}

// New builds a Registry from loaded configuration, turning each ChainConfig
// entry's bridge and pool addresses into the addresses and pointers the
// rest of the system consumes. The entry's token list is not read here.
func New(chains []config.ChainConfig) (*Registry, error) {
	reg := &Registry{
		byID:   make(map[uint64]*Chain, len(chains)),
		byName: make(map[string]*Chain, len(chains)),
	}

	for _, cc := range chains {
		chain := &Chain{
			Name:                 cc.Name,
			ChainID:              cc.ChainID,
			RPCURL:               cc.RPCURL,
			BridgeAddress:        common.HexToAddress(cc.BridgeAddress),
			StartBlock:           cc.StartBlock,
			MaxBlockRange:        cc.MaxBlockRange,
			RequiresPOAExtension: cc.RequiresPOAExtension,
			IgnoredPoolAddresses: make(map[common.Address]struct{}, len(cc.IgnoredPoolAddresses)),
		}

		if chain.MaxBlockRange == 0 {
			chain.MaxBlockRange = defaultMaxBlockRange
		}

		if cc.NUSDPool != "" {
			addr := common.HexToAddress(cc.NUSDPool)
			chain.NUSDPool = &addr
		}
		if cc.NETHPool != "" {
			addr := common.HexToAddress(cc.NETHPool)
			chain.NETHPool = &addr
		}
		for _, a := range cc.IgnoredPoolAddresses {
			chain.IgnoredPoolAddresses[common.HexToAddress(a)] = struct{}{}
		}

		if _, dup := reg.byID[chain.ChainID]; dup {
			return nil, fmt.Errorf("duplicate chain_id %d", chain.ChainID)
		}

		reg.byID[chain.ChainID] = chain
		reg.byName[strings.ToLower(chain.Name)] = chain
	}

	return reg, nil
}

// ByID resolves a chain by its numeric chain ID, as needed when decoding
// args.chainId out of an OUT event.
func (r *Registry) ByID(chainID uint64) (*Chain, bool) {
	c, ok := r.byID[chainID]
	return c, ok
}

// ByName resolves a chain by its configured name, case-insensitively.
func (r *Registry) ByName(name string) (*Chain, bool) {
	c, ok := r.byName[strings.ToLower(name)]
	return c, ok
}

// All returns every configured chain. The returned slice is a fresh copy;
// mutating it does not affect the registry.
func (r *Registry) All() []*Chain {
	out := make([]*Chain, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out
}

// IsIgnoredPool reports whether addr is one of this chain's configured
// test pools; events referencing one are dropped silently rather than
// reconciled.
func (c *Chain) IsIgnoredPool(addr common.Address) bool {
	_, ok := c.IgnoredPoolAddresses[addr]
	return ok
}
