package bridgeabi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ERC20BareABIJSON is the minimal ERC-20 surface the token registry and the
// decoder's Transfer-log scan need: decimals/name/symbol plus the Transfer
// event.
const ERC20BareABIJSON = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"}
]`

// BasePoolABIJSON exposes getToken(index), used to walk a pool's member
// tokens until the call reverts.
const BasePoolABIJSON = `[
	{"inputs":[{"internalType":"uint8","name":"index","type":"uint8"}],"name":"getToken","outputs":[{"internalType":"contract IERC20","name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

// ERC20 and BasePool are parsed once at package init, the same way
// Multicall3ABI is parsed in pkg/chain/evm/multicall.go.
var (
	ERC20    abi.ABI
	BasePool abi.ABI
)

func init() {
	var err error
	ERC20, err = abi.JSON(strings.NewReader(ERC20BareABIJSON))
	if err != nil {
		panic("bridgeabi: failed to parse ERC20 ABI: " + err.Error())
	}
	BasePool, err = abi.JSON(strings.NewReader(BasePoolABIJSON))
	if err != nil {
		panic("bridgeabi: failed to parse BasePool ABI: " + err.Error())
	}
}
