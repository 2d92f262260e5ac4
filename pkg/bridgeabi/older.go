package bridgeabi

// OlderBridgeABIJSON mirrors OLDERBRIDGE_ABI: the earliest generation this
// indexer still understands. It differs from old.go only on the
// *AndSwap/*AndRemove variants, which predate the trailing deadline field —
// decoding an older-generation log against old.go's layout fails on data
// length, and the ladder falls through to this definition.
const OlderBridgeABIJSON = `[
	{"anonymous":false,"name":"TokenRedeem","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"}
	]},
	{"anonymous":false,"name":"TokenRedeemAndSwap","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"tokenIndexFrom","type":"uint8"},
		{"indexed":false,"name":"tokenIndexTo","type":"uint8"},
		{"indexed":false,"name":"minDy","type":"uint256"}
	]},
	{"anonymous":false,"name":"TokenRedeemAndRemove","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"swapTokenIndex","type":"uint8"},
		{"indexed":false,"name":"swapMinAmount","type":"uint256"}
	]},
	{"anonymous":false,"name":"TokenDeposit","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"}
	]},
	{"anonymous":false,"name":"TokenDepositAndSwap","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"tokenIndexFrom","type":"uint8"},
		{"indexed":false,"name":"tokenIndexTo","type":"uint8"},
		{"indexed":false,"name":"minDy","type":"uint256"}
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
		{"indexed":false,"name":"swapSuccess","type":"bool"},
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
		{"indexed":false,"name":"swapSuccess","type":"bool"},
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
		{"name":"swapSuccess","type":"bool"},
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
		{"name":"swapSuccess","type":"bool"},
		{"name":"kappa","type":"bytes32"}
	]}
]`

// Older is the parsed form of OlderBridgeABIJSON, the last rung of the
// fallback ladder. A decode failure against this definition is fatal.
var Older = mustParseABI("older", OlderBridgeABIJSON)
