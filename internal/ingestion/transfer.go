package ingestion

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"bridgeindexer/pkg/bridgeabi"
)

// transferArgs is the decoded shape of an ERC-20 Transfer log, the sibling
// event resolution falls back to when a bridge event's own args don't
// carry the moved amount directly (any *AndSwap/*AndRemove variant).
type transferArgs struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

// transferEvent is looked up once; every chain's wrapped/underlying ERC-20s
// share the same Transfer signature.
var transferEvent = bridgeabi.ERC20.Events["Transfer"]

// decodeTransferLog unpacks rawLog as an ERC-20 Transfer. A topic-count
// mismatch (the log isn't actually a Transfer, or belongs to a
// differently-shaped event that happens to share a topic prefix) surfaces
// as an error so the caller can fall through to scanning the rest of the
// receipt's logs.
func decodeTransferLog(rawLog *types.Log) (transferArgs, error) {
	if len(rawLog.Topics) != 3 || rawLog.Topics[0] != transferEvent.ID {
		return transferArgs{}, fmt.Errorf("ingestion: log at %s is not a Transfer event", rawLog.Address.Hex())
	}

	var indexed abi.Arguments
	for _, in := range transferEvent.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}

	args := make(map[string]interface{})
	if err := abi.ParseTopicsIntoMap(args, indexed, rawLog.Topics[1:]); err != nil {
		return transferArgs{}, fmt.Errorf("ingestion: decoding Transfer topics: %w", err)
	}

	var nonIndexed abi.Arguments
	for _, in := range transferEvent.Inputs {
		if !in.Indexed {
			nonIndexed = append(nonIndexed, in)
		}
	}
	if err := nonIndexed.UnpackIntoMap(args, rawLog.Data); err != nil {
		return transferArgs{}, fmt.Errorf("ingestion: decoding Transfer data: %w", err)
	}

	from, _ := args["from"].(common.Address)
	to, _ := args["to"].(common.Address)
	value, _ := args["value"].(*big.Int)
	if value == nil {
		return transferArgs{}, fmt.Errorf("ingestion: Transfer log missing value")
	}

	return transferArgs{From: from, To: to, Value: value}, nil
}

// findTransferByAddress scans receiptLogs for the first Transfer emitted by
// tokenAddr, used when the primary log (receipt.Logs[0] for OUT, or the
// resolved received token for IN) doesn't itself decode as a Transfer.
func findTransferByAddress(receiptLogs []*types.Log, tokenAddr common.Address) (transferArgs, bool) {
	for _, l := range receiptLogs {
		if l.Address != tokenAddr {
			continue
		}
		args, err := decodeTransferLog(l)
		if err != nil {
			continue
		}
		return args, true
	}
	return transferArgs{}, false
}

// findTransferTo scans receiptLogs for a Transfer of tokenAddr whose
// recipient is to, used by IN resolution where the relevant leg is
// specifically the mint/release to the user rather than any transfer of
// that token in the receipt.
func findTransferTo(receiptLogs []*types.Log, tokenAddr, to common.Address) (transferArgs, bool) {
	for _, l := range receiptLogs {
		if l.Address != tokenAddr {
			continue
		}
		args, err := decodeTransferLog(l)
		if err != nil {
			continue
		}
		if args.To != to {
			continue
		}
		return args, true
	}
	return transferArgs{}, false
}
