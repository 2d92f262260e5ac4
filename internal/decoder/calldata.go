package decoder

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"bridgeindexer/pkg/bridgeabi"
)

// functionForEvent maps an IN event name to the validator-call function it
// is emitted from. Only the current ABI generation's function signatures
// carry a pool arg (old.go/older.go's mint*/withdraw* functions predate
// it); for those earlier generations the override has to be recovered from
// the transaction's calldata instead of the event itself.
func functionForEvent(eventName string) (string, bool) {
	switch eventName {
	case "TokenMint":
		return "mint", true
	case "TokenMintAndSwap":
		return "mintAndSwap", true
	case "TokenWithdraw":
		return "withdraw", true
	case "TokenWithdrawAndRemove":
		return "withdrawAndRemove", true
	default:
		return "", false
	}
}

// DecodeFunctionPool recovers the pool override argument, if any, from the
// originating transaction's calldata for an IN event. It walks the same
// [current, old, older] ladder as Decode, since which generation produced
// the log determines which function signature the calldata was encoded
// with. A nil, nil return means there is no override to recover: the event
// is not an IN event, the calldata is shorter than a function selector, or
// the given generation's function has no pool arg (old/older bridges never
// take one).
func DecodeFunctionPool(eventName string, generation bridgeabi.Generation, calldata []byte) (*common.Address, error) {
	fnName, ok := functionForEvent(eventName)
	if !ok {
		return nil, nil
	}
	if len(calldata) < 4 {
		// The validator call arrived through a relayer or multicall whose
		// outer calldata isn't the bridge function itself; there is no
		// pool override to recover from it.
		return nil, nil
	}

	for _, rung := range bridgeabi.Ladder {
		if rung.Name != generation {
			continue
		}
		method, ok := rung.ABI.Methods[fnName]
		if !ok {
			return nil, fmt.Errorf("decoder: %s generation has no %s method", rung.Name, fnName)
		}

		args := make(map[string]interface{})
		if err := method.Inputs.UnpackIntoMap(args, calldata[4:]); err != nil {
			return nil, &AbiMismatchError{Generation: string(rung.Name), EventName: eventName, Reason: "calldata decode: " + err.Error()}
		}

		pool, ok := args["pool"].(common.Address)
		if !ok {
			return nil, nil
		}
		return &pool, nil
	}

	return nil, fmt.Errorf("decoder: unknown generation %s", generation)
}
