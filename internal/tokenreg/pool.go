package tokenreg

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"bridgeindexer/pkg/bridgeabi"
	"bridgeindexer/pkg/chain/evm"
)

// maxPoolTokenIndex bounds the getToken(i) walk: the call is made for i in
// [0, 255) and the first revert ends it, so no pool is ever assumed to hold
// more than 255 tokens.
const maxPoolTokenIndex = 255

// PoolKind distinguishes the bridge's two synthetic-asset pools.
type PoolKind string

const (
	PoolKindNUSD PoolKind = "nusd"
	PoolKindNETH PoolKind = "neth"
)

// PoolRegistry holds, per chain, each pool's ordered member tokens and the
// reverse address-to-pool-kind lookup used to resolve tokenIndexFrom/To and
// swapTokenIndex fields in decoded events.
type PoolRegistry struct {
	membersByKind map[PoolKind][]common.Address
	kindByAddress map[common.Address]PoolKind
}

// BuildPoolRegistry discovers the member tokens of every pool address
// present on chain (nusd_pool, neth_pool — either may be absent) and
// indexes them for later lookup.
func BuildPoolRegistry(ctx context.Context, client *evm.Client, pools map[PoolKind]common.Address) (*PoolRegistry, error) {
	reg := &PoolRegistry{
		membersByKind: make(map[PoolKind][]common.Address, len(pools)),
		kindByAddress: make(map[common.Address]PoolKind, len(pools)),
	}

	for kind, addr := range pools {
		tokens, err := DiscoverPoolTokens(ctx, client, addr)
		if err != nil {
			return nil, fmt.Errorf("discovering tokens for %s pool %s: %w", kind, addr.Hex(), err)
		}
		reg.membersByKind[kind] = tokens
		reg.kindByAddress[addr] = kind
	}

	return reg, nil
}

// NewPoolRegistryFromMembers builds a PoolRegistry directly from known pool
// addresses and their member token lists, bypassing on-chain discovery.
// Exported for tests that need a populated registry without dialing a node.
func NewPoolRegistryFromMembers(poolAddresses map[PoolKind]common.Address, members map[PoolKind][]common.Address) *PoolRegistry {
	reg := &PoolRegistry{
		membersByKind: make(map[PoolKind][]common.Address, len(members)),
		kindByAddress: make(map[common.Address]PoolKind, len(poolAddresses)),
	}
	for kind, tokens := range members {
		reg.membersByKind[kind] = tokens
	}
	for kind, addr := range poolAddresses {
		reg.kindByAddress[addr] = kind
	}
	return reg
}

// MemberAt returns the token at index i within the given pool kind's member
// list, as used to resolve tokenIndexFrom/To and swapTokenIndex.
func (r *PoolRegistry) MemberAt(kind PoolKind, index uint8) (common.Address, bool) {
	members := r.membersByKind[kind]
	if int(index) >= len(members) {
		return common.Address{}, false
	}
	return members[index], true
}

// KindOf resolves a pool address to its kind, case-insensitively (addresses
// are compared as common.Address values, which are already
// case-normalized).
func (r *PoolRegistry) KindOf(addr common.Address) (PoolKind, bool) {
	kind, ok := r.kindByAddress[addr]
	return kind, ok
}

// DiscoverPoolTokens walks a base pool's getToken(i) accessor starting at
// index 0 until the call reverts, returning every member token address in
// order. A revert on getToken(i) is treated as "index out of range" rather
// than a real fault.
func DiscoverPoolTokens(ctx context.Context, client *evm.Client, pool common.Address) ([]common.Address, error) {
	var tokens []common.Address

	for i := 0; i < maxPoolTokenIndex; i++ {
		data, err := bridgeabi.BasePool.Pack("getToken", uint8(i))
		if err != nil {
			return nil, err
		}

		result, err := client.CallContract(ctx, pool, data)
		if err != nil {
			break
		}

		var token common.Address
		if err := bridgeabi.BasePool.UnpackIntoInterface(&token, "getToken", result); err != nil {
			break
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}
