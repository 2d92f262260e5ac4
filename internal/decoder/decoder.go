// Package decoder turns raw bridge contract logs into DecodedEvent values.
// It resolves a log's event identity from a fixed topic table, then walks
// the three-generation ABI fallback ladder (pkg/bridgeabi), retrying
// against progressively older ABI definitions until one unpacks the log's
// arguments cleanly.
package decoder

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"bridgeindexer/pkg/bridgeabi"
)

// DecodedEvent is the normalized shape of any of the nine bridge events,
// whichever ABI generation produced it.
type DecodedEvent struct {
	EventName   string
	Direction   Direction
	Generation  bridgeabi.Generation
	BlockNumber uint64
	TxHash      common.Hash
	TxIndex     uint
	LogIndex    uint

	To     common.Address
	Token  common.Address
	Amount *big.Int

	// ChainID is the destination chain id; populated on OUT events only.
	ChainID *big.Int
	// Fee is populated on IN events only.
	Fee *big.Int

	// HasKappa is false for OUT events decoded against a generation that
	// predates kappa tracking on the source-chain event.
	Kappa    common.Hash
	HasKappa bool

	// Pool is populated only for *AndSwap/*AndRemove variants decoded
	// against the current ABI generation, which carries it explicitly.
	Pool *common.Address

	// SwapSuccess is populated only for IN *AndSwap/*AndRemove variants.
	SwapSuccess *bool

	// TokenIndexFrom/TokenIndexTo are populated on *AndSwap variants;
	// TokenIndexTo selects the received pool member. SwapTokenIndex is
	// populated on *AndRemove variants for the same purpose.
	TokenIndexFrom *uint8
	TokenIndexTo   *uint8
	SwapTokenIndex *uint8
}

// IsSwapVariant reports whether this event's name carries swap/remove args.
func (d *DecodedEvent) IsSwapVariant() bool {
	switch d.EventName {
	case "TokenRedeemAndSwap", "TokenRedeemAndRemove", "TokenDepositAndSwap",
		"TokenMintAndSwap", "TokenWithdrawAndRemove":
		return true
	default:
		return false
	}
}

// Decode resolves log's event from the topic table and unpacks its
// arguments by walking bridgeabi.Ladder from newest to oldest generation.
// It returns UnknownTopicError for an unrecognized topic0 and
// DecodeIncompleteError if every generation fails.
func Decode(log types.Log) (*DecodedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, &UnknownTopicError{Topic: "<none>"}
	}

	eventName, direction, ok := LookupTopic(log.Topics[0])
	if !ok {
		return nil, &UnknownTopicError{Topic: log.Topics[0].Hex()}
	}

	var attempts []error
	for _, rung := range bridgeabi.Ladder {
		evt, err := decodeWithGeneration(rung, eventName, direction, log)
		if err == nil {
			return evt, nil
		}
		attempts = append(attempts, err)
	}

	return nil, &DecodeIncompleteError{EventName: eventName, Attempts: attempts}
}

func decodeWithGeneration(rung bridgeabi.GenerationRung, eventName string, direction Direction, log types.Log) (*DecodedEvent, error) {
	event, ok := rung.ABI.Events[eventName]
	if !ok {
		return nil, &AbiMismatchError{Generation: string(rung.Name), EventName: eventName, Reason: "event not defined in this generation"}
	}

	indexed := indexedArguments(event.Inputs)
	if len(log.Topics)-1 != len(indexed) {
		return nil, &AbiMismatchError{
			Generation: string(rung.Name),
			EventName:  eventName,
			Reason:     fmt.Sprintf("log has %d indexed topics, generation expects %d", len(log.Topics)-1, len(indexed)),
		}
	}

	args := make(map[string]interface{})
	if err := abi.ParseTopicsIntoMap(args, indexed, log.Topics[1:]); err != nil {
		return nil, &AbiMismatchError{Generation: string(rung.Name), EventName: eventName, Reason: "indexed topic decode: " + err.Error()}
	}

	nonIndexed := nonIndexedArguments(event.Inputs)
	if err := nonIndexed.UnpackIntoMap(args, log.Data); err != nil {
		return nil, &AbiMismatchError{Generation: string(rung.Name), EventName: eventName, Reason: "non-indexed data decode: " + err.Error()}
	}

	return buildDecodedEvent(eventName, direction, rung.Name, log, args)
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	var out abi.Arguments
	for _, a := range args {
		if a.Indexed {
			out = append(out, a)
		}
	}
	return out
}

func nonIndexedArguments(args abi.Arguments) abi.Arguments {
	var out abi.Arguments
	for _, a := range args {
		if !a.Indexed {
			out = append(out, a)
		}
	}
	return out
}

func buildDecodedEvent(eventName string, direction Direction, generation bridgeabi.Generation, log types.Log, args map[string]interface{}) (*DecodedEvent, error) {
	evt := &DecodedEvent{
		EventName:   eventName,
		Direction:   direction,
		Generation:  generation,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		TxIndex:     log.TxIndex,
		LogIndex:    log.Index,
	}

	to, ok := args["to"].(common.Address)
	if !ok {
		return nil, &AbiMismatchError{Generation: string(generation), EventName: eventName, Reason: "missing to"}
	}
	evt.To = to

	token, ok := args["token"].(common.Address)
	if !ok {
		return nil, &AbiMismatchError{Generation: string(generation), EventName: eventName, Reason: "missing token"}
	}
	evt.Token = token

	amount, ok := args["amount"].(*big.Int)
	if !ok {
		return nil, &AbiMismatchError{Generation: string(generation), EventName: eventName, Reason: "missing amount"}
	}
	evt.Amount = amount

	if kappa, ok := args["kappa"].([32]byte); ok {
		evt.Kappa = common.BytesToHash(kappa[:])
		evt.HasKappa = true
	} else if direction == DirectionIn {
		return nil, &InvariantViolationError{EventName: eventName, Reason: "IN event decoded without kappa"}
	}

	if direction == DirectionOut {
		chainID, ok := args["chainId"].(*big.Int)
		if !ok {
			return nil, &AbiMismatchError{Generation: string(generation), EventName: eventName, Reason: "missing chainId"}
		}
		evt.ChainID = chainID
	} else {
		fee, ok := args["fee"].(*big.Int)
		if !ok {
			return nil, &AbiMismatchError{Generation: string(generation), EventName: eventName, Reason: "missing fee"}
		}
		evt.Fee = fee
	}

	if pool, ok := args["pool"].(common.Address); ok {
		evt.Pool = &pool
	}
	if success, ok := args["swapSuccess"].(bool); ok {
		evt.SwapSuccess = &success
	}
	if idx, ok := args["tokenIndexFrom"].(uint8); ok {
		evt.TokenIndexFrom = &idx
	}
	if idx, ok := args["tokenIndexTo"].(uint8); ok {
		evt.TokenIndexTo = &idx
	}
	if idx, ok := args["swapTokenIndex"].(uint8); ok {
		evt.SwapTokenIndex = &idx
	}

	return evt, nil
}
