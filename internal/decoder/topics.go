package decoder

import "github.com/ethereum/go-ethereum/common"

// Direction classifies which side of a bridge transfer an event represents:
// OUT is a lock/burn on the source chain, IN is the matching mint/release on
// the destination chain.
type Direction int

const (
	DirectionOut Direction = iota
	DirectionIn
)

func (d Direction) String() string {
	if d == DirectionIn {
		return "in"
	}
	return "out"
}

type topicEntry struct {
	EventName string
	Direction Direction
}

// topics maps topic0 (the event signature hash) to the event name and
// direction. It holds one hash per event name: the signature hash of that
// event's layout in the old generation (pkg/bridgeabi/old.go). Where the
// current or older generation declares a different argument list for the
// same event name, its own signature hash differs and is not in this
// table. Decoding dispatches on the name alone and then tries each
// generation's layout; it never compares topic0 with a generation's event ID.
var topics = map[common.Hash]topicEntry{
	common.HexToHash("0xdc5bad4651c5fbe9977a696aadc65996c468cde1448dd468ec0d83bf61c4b57c"): {"TokenRedeem", DirectionOut},
	common.HexToHash("0x91f25e9be0134ec851830e0e76dc71e06f9dade75a9b84e9524071dbbc319425"): {"TokenRedeemAndSwap", DirectionOut},
	common.HexToHash("0x9a7024cde1920aa50cdde09ca396229e8c4d530d5cfdc6233590def70a94408c"): {"TokenRedeemAndRemove", DirectionOut},
	common.HexToHash("0xda5273705dbef4bf1b902a131c2eac086b7e1476a8ab0cb4da08af1fe1bd8e3b"): {"TokenDeposit", DirectionOut},
	common.HexToHash("0x79c15604b92ef54d3f61f0c40caab8857927ca3d5092367163b4562c1699eb5f"): {"TokenDepositAndSwap", DirectionOut},
	common.HexToHash("0xbf14b9fde87f6e1c29a7e0787ad1d0d64b4648d8ae63da21524d9fd0f283dd38"): {"TokenMint", DirectionIn},
	common.HexToHash("0x4f56ec39e98539920503fd54ee56ae0cbebe9eb15aa778f18de67701eeae7c65"): {"TokenMintAndSwap", DirectionIn},
	common.HexToHash("0x8b0afdc777af6946e53045a4a75212769075d30455a212ac51c9b16f9c5c9b26"): {"TokenWithdraw", DirectionIn},
	common.HexToHash("0xc1a608d0f8122d014d03cc915a91d98cef4ebaf31ea3552320430cba05211b6d"): {"TokenWithdrawAndRemove", DirectionIn},
}

// LookupTopic resolves a log's topic0 to its event name and direction. An
// unrecognized topic0 is fail-closed: the caller must treat it as an
// UnknownTopicError rather than guessing.
func LookupTopic(topic0 common.Hash) (eventName string, direction Direction, ok bool) {
	entry, ok := topics[topic0]
	return entry.EventName, entry.Direction, ok
}

// AllTopics returns every known bridge event signature, for use as the
// topic0 set of a log filter. Filtering at the RPC layer keeps the
// bridge contract's unrelated events (ownership transfers, role grants)
// out of the pipeline, which treats an unknown topic as fatal.
func AllTopics() []common.Hash {
	out := make([]common.Hash, 0, len(topics))
	for h := range topics {
		out = append(out, h)
	}
	return out
}
