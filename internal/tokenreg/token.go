// Package tokenreg warms up and holds the per-chain token metadata
// (decimals/name/symbol) and pool membership. OUT resolution reads a
// token's symbol to pick the pool kind; ScaleAmount converts raw on-chain
// amounts by a token's decimals. Each token's three metadata calls go out
// as one Multicall3 batch, and those batches are fanned out across tokens
// under a bounded worker pool.
package tokenreg

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"bridgeindexer/pkg/bridgeabi"
	"bridgeindexer/pkg/chain/evm"
)

// maxConcurrentFetches bounds in-flight decimals/name/symbol calls per
// chain.
const maxConcurrentFetches = 24

// synDecimals is the canonical decimal count synthetic bridge tokens (nUSD,
// nETH) are scaled to when a token's own decimals call fails.
const synDecimals = 18

// Info is one token's warmed-up metadata.
type Info struct {
	Address  common.Address
	Name     string
	Symbol   string
	Decimals uint8
}

// Registry is the immutable, per-chain token metadata table built once at
// startup by Warmup.
type Registry struct {
	mu     sync.RWMutex
	tokens map[common.Address]Info
}

// Warmup fetches decimals/name/symbol for every address, bounding
// concurrency to maxConcurrentFetches in-flight calls. Individual metadata
// calls that revert leave that field zero-valued; only a failed batch call
// fails the warmup.
func Warmup(ctx context.Context, client *evm.Client, addresses []common.Address) (*Registry, error) {
	reg := &Registry{tokens: make(map[common.Address]Info, len(addresses))}

	sem := make(chan struct{}, maxConcurrentFetches)
	g, ctx := errgroup.WithContext(ctx)

	for _, addr := range addresses {
		addr := addr
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			info, err := fetchTokenInfo(ctx, client, addr)
			if err != nil {
				return fmt.Errorf("token %s: %w", addr.Hex(), err)
			}

			reg.mu.Lock()
			reg.tokens[addr] = info
			reg.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reg, nil
}

func fetchTokenInfo(ctx context.Context, client *evm.Client, addr common.Address) (Info, error) {
	decimalsData, err := bridgeabi.ERC20.Pack("decimals")
	if err != nil {
		return Info{}, fmt.Errorf("packing decimals: %w", err)
	}
	nameData, err := bridgeabi.ERC20.Pack("name")
	if err != nil {
		return Info{}, fmt.Errorf("packing name: %w", err)
	}
	symbolData, err := bridgeabi.ERC20.Pack("symbol")
	if err != nil {
		return Info{}, fmt.Errorf("packing symbol: %w", err)
	}

	calls := []evm.ContractCall{
		{Target: addr, CallData: decimalsData},
		{Target: addr, CallData: nameData},
		{Target: addr, CallData: symbolData},
	}

	results, err := client.BatchCallContract(ctx, calls)
	if err != nil {
		return Info{}, fmt.Errorf("batch call: %w", err)
	}
	if len(results) != 3 {
		return Info{}, fmt.Errorf("expected 3 results, got %d", len(results))
	}

	info := Info{Address: addr}

	if results[0].Success {
		var decimals uint8
		if err := bridgeabi.ERC20.UnpackIntoInterface(&decimals, "decimals", results[0].Data); err == nil {
			info.Decimals = decimals
		}
	}
	if results[1].Success {
		var name string
		if err := bridgeabi.ERC20.UnpackIntoInterface(&name, "name", results[1].Data); err == nil {
			info.Name = name
		}
	}
	if results[2].Success {
		var symbol string
		if err := bridgeabi.ERC20.UnpackIntoInterface(&symbol, "symbol", results[2].Data); err == nil {
			info.Symbol = strings.TrimSpace(symbol)
		}
	}

	return info, nil
}

// Lookup resolves a token's warmed-up metadata, case-insensitively by
// address value (common.Address is already a fixed-size byte array, so
// equality is inherently case-insensitive once parsed).
func (r *Registry) Lookup(addr common.Address) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.tokens[addr]
	return info, ok
}

// Set records or overwrites a token's metadata. Neither Warmup nor pool
// discovery calls it.
func (r *Registry) Set(info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[info.Address] = info
}

// ScaleAmount converts a raw on-chain integer amount into a rational value
// scaled by the token's decimals. A decimals of 0 (metadata unavailable or
// genuinely zero-decimal) is treated as synDecimals, the bridge's
// synthetic-asset default.
func ScaleAmount(amount *big.Int, decimals uint8) *big.Rat {
	if decimals == 0 {
		decimals = synDecimals
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Rat).SetFrac(amount, divisor)
}
