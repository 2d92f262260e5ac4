package bridgeabi

// CurrentBridgeABIJSON is the newest bridge event layout: every OUT event
// (TokenRedeem*, TokenDeposit*) carries an indexed kappa alongside the
// already-indexed recipient, and every *AndSwap/*AndRemove variant carries
// an explicit pool address instead of requiring the indexer to resolve one
// from config. Older deployments predate both additions — see old.go and
// older.go.
const CurrentBridgeABIJSON = `[
	{"anonymous":false,"name":"TokenRedeem","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"anonymous":false,"name":"TokenRedeemAndSwap","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"tokenIndexFrom","type":"uint8"},
		{"indexed":false,"name":"tokenIndexTo","type":"uint8"},
		{"indexed":false,"name":"minDy","type":"uint256"},
		{"indexed":false,"name":"deadline","type":"uint256"},
		{"indexed":false,"name":"pool","type":"address"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"anonymous":false,"name":"TokenRedeemAndRemove","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"swapTokenIndex","type":"uint8"},
		{"indexed":false,"name":"swapMinAmount","type":"uint256"},
		{"indexed":false,"name":"swapDeadline","type":"uint256"},
		{"indexed":false,"name":"pool","type":"address"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"anonymous":false,"name":"TokenDeposit","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"anonymous":false,"name":"TokenDepositAndSwap","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"tokenIndexFrom","type":"uint8"},
		{"indexed":false,"name":"tokenIndexTo","type":"uint8"},
		{"indexed":false,"name":"minDy","type":"uint256"},
		{"indexed":false,"name":"deadline","type":"uint256"},
		{"indexed":false,"name":"pool","type":"address"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"anonymous":false,"name":"TokenMint","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"fee","type":"uint256"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"anonymous":false,"name":"TokenMintAndSwap","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"fee","type":"uint256"},
		{"indexed":false,"name":"tokenIndexFrom","type":"uint8"},
		{"indexed":false,"name":"tokenIndexTo","type":"uint8"},
		{"indexed":false,"name":"minDy","type":"uint256"},
		{"indexed":false,"name":"deadline","type":"uint256"},
		{"indexed":false,"name":"swapSuccess","type":"bool"},
		{"indexed":false,"name":"pool","type":"address"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"anonymous":false,"name":"TokenWithdraw","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"fee","type":"uint256"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"anonymous":false,"name":"TokenWithdrawAndRemove","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"fee","type":"uint256"},
		{"indexed":false,"name":"swapTokenIndex","type":"uint8"},
		{"indexed":false,"name":"swapMinAmount","type":"uint256"},
		{"indexed":false,"name":"swapDeadline","type":"uint256"},
		{"indexed":false,"name":"swapSuccess","type":"bool"},
		{"indexed":false,"name":"pool","type":"address"},
		{"indexed":true,"name":"kappa","type":"bytes32"}
	]},
	{"type":"function","name":"mint","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"to","type":"address"},
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"fee","type":"uint256"},
		{"name":"kappa","type":"bytes32"}
	]},
	{"type":"function","name":"mintAndSwap","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"to","type":"address"},
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"fee","type":"uint256"},
		{"name":"tokenIndexFrom","type":"uint8"},
		{"name":"tokenIndexTo","type":"uint8"},
		{"name":"minDy","type":"uint256"},
		{"name":"deadline","type":"uint256"},
		{"name":"swapSuccess","type":"bool"},
		{"name":"pool","type":"address"},
		{"name":"kappa","type":"bytes32"}
	]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"to","type":"address"},
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"fee","type":"uint256"},
		{"name":"kappa","type":"bytes32"}
	]},
	{"type":"function","name":"withdrawAndRemove","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"to","type":"address"},
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"fee","type":"uint256"},
		{"name":"swapTokenIndex","type":"uint8"},
		{"name":"swapMinAmount","type":"uint256"},
		{"name":"swapDeadline","type":"uint256"},
		{"name":"swapSuccess","type":"bool"},
		{"name":"pool","type":"address"},
		{"name":"kappa","type":"bytes32"}
	]}
]`

// Current is the parsed form of CurrentBridgeABIJSON, tried first by the
// decoder's fallback ladder. It also carries the function signatures
// (mint/mintAndSwap/withdraw/withdrawAndRemove) the validator calls when
// completing an IN transfer, used to recover arguments from a
// transaction's calldata when its emitted event doesn't carry them.
var Current = mustParseABI("current", CurrentBridgeABIJSON)
