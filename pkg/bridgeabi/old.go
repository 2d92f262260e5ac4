package bridgeabi

// OldBridgeABIJSON is the bridge contract's previous ABI generation: OUT
// events carry no kappa at all (this version predates kappa-on-OUT), and
// *AndSwap/*AndRemove variants carry no pool field. IN events already had
// kappa in this generation.
const OldBridgeABIJSON = `[
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
		{"indexed":false,"name":"minDy","type":"uint256"},
		{"indexed":false,"name":"deadline","type":"uint256"}
	]},
	{"anonymous":false,"name":"TokenRedeemAndRemove","type":"event","inputs":[
		{"indexed":true,"name":"to","type":"address"},
		{"indexed":false,"name":"chainId","type":"uint256"},
		{"indexed":false,"name":"token","type":"address"},
		{"indexed":false,"name":"amount","type":"uint256"},
		{"indexed":false,"name":"swapTokenIndex","type":"uint8"},
		{"indexed":false,"name":"swapMinAmount","type":"uint256"},
		{"indexed":false,"name":"swapDeadline","type":"uint256"}
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
		{"indexed":false,"name":"minDy","type":"uint256"},
		{"indexed":false,"name":"deadline","type":"uint256"}
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
		{"name":"kappa","type":"bytes32"}
	]}
]`

// Old is the parsed form of OldBridgeABIJSON, tried second.
var Old = mustParseABI("old", OldBridgeABIJSON)
