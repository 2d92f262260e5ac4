package bridgeabi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// mustParseABI parses an ABI JSON literal, panicking on failure. Used by
// the generation ABI vars (current.go/old.go/older.go) so that those vars
// are populated via their initializer expression rather than an init()
// func body -- Ladder's initializer below depends on them, and the
// compiler only orders package-level var initializers by that dependency
// graph, not by init() func execution order.
func mustParseABI(name, jsonStr string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(jsonStr))
	if err != nil {
		panic("bridgeabi: failed to parse " + name + " bridge ABI: " + err.Error())
	}
	return parsed
}

// Generation names a rung of the fallback ladder, used only for logging and
// metrics labels.
type Generation string

const (
	GenerationCurrent Generation = "current"
	GenerationOld     Generation = "old"
	GenerationOlder   Generation = "older"
)

// GenerationRung pairs a Generation label with its parsed ABI.
type GenerationRung struct {
	Name Generation
	ABI  abi.ABI
}

// Ladder is the ordered fallback sequence the decoder walks: current first,
// then old, then older. A failure at every rung is fatal.
var Ladder = []GenerationRung{
	{Name: GenerationCurrent, ABI: Current},
	{Name: GenerationOld, ABI: Old},
	{Name: GenerationOlder, ABI: Older},
}
