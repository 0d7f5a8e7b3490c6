package abis

// TokenJSONABI is the ABI of the mintable ERC-20 used to pay fees
var TokenJSONABI = []byte(`[
	{"type": "constructor", "inputs": [
		{"name": "name", "type": "string"},
		{"name": "symbol", "type": "string"},
		{"name": "decimals", "type": "uint8"}
	]},
	{"type": "function", "name": "name", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "string"}]},
	{"type": "function", "name": "symbol", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "string"}]},
	{"type": "function", "name": "decimals", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "uint8"}]},
	{"type": "function", "name": "totalSupply", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "balanceOf", "stateMutability": "view",
		"inputs": [{"name": "account", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "allowance", "stateMutability": "view",
		"inputs": [{"name": "owner", "type": "address"}, {"name": "spender", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "approve", "stateMutability": "nonpayable",
		"inputs": [{"name": "spender", "type": "address"}, {"name": "amount", "type": "uint256"}],
		"outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "transfer", "stateMutability": "nonpayable",
		"inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}],
		"outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "transferFrom", "stateMutability": "nonpayable",
		"inputs": [
			{"name": "from", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bool"}]},
	{"type": "function", "name": "mint", "stateMutability": "nonpayable",
		"inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}],
		"outputs": []},
	{"type": "event", "name": "Transfer", "anonymous": false, "inputs": [
		{"name": "from", "type": "address", "indexed": true},
		{"name": "to", "type": "address", "indexed": true},
		{"name": "value", "type": "uint256", "indexed": false}
	]},
	{"type": "event", "name": "Approval", "anonymous": false, "inputs": [
		{"name": "owner", "type": "address", "indexed": true},
		{"name": "spender", "type": "address", "indexed": true},
		{"name": "value", "type": "uint256", "indexed": false}
	]}
]`)

// WalletJSONABI is the ABI of the single owner account
var WalletJSONABI = []byte(`[
	{"type": "constructor", "inputs": [{"name": "owner", "type": "address"}]},
	{"type": "function", "name": "owner", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "name": "executeBatchTransaction", "stateMutability": "payable",
		"inputs": [{"name": "datas", "type": "bytes[]"}, {"name": "callers", "type": "address[]"}],
		"outputs": []}
]`)

// FactoryJSONABI is the ABI of the account factory
var FactoryJSONABI = []byte(`[
	{"type": "constructor", "inputs": [{"name": "aaBytecodeHash", "type": "bytes32"}]},
	{"type": "function", "name": "aaBytecodeHash", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "bytes32"}]},
	{"type": "function", "name": "createAccount", "stateMutability": "nonpayable",
		"inputs": [{"name": "salt", "type": "bytes32"}, {"name": "owner", "type": "address"}],
		"outputs": [{"name": "accountAddress", "type": "address"}]},
	{"type": "function", "name": "getAddress", "stateMutability": "view",
		"inputs": [{"name": "salt", "type": "bytes32"}, {"name": "owner", "type": "address"}],
		"outputs": [{"name": "", "type": "address"}]},
	{"type": "event", "name": "AccountCreated", "anonymous": false, "inputs": [
		{"name": "account", "type": "address", "indexed": true},
		{"name": "owner", "type": "address", "indexed": true},
		{"name": "salt", "type": "bytes32", "indexed": false}
	]}
]`)

// PaymasterJSONABI is the ABI of the token paymaster
var PaymasterJSONABI = []byte(`[
	{"type": "constructor", "inputs": [
		{"name": "token", "type": "address"},
		{"name": "factory", "type": "address"},
		{"name": "price", "type": "uint256"}
	]},
	{"type": "function", "name": "token", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "name": "price", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "factory", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "name": "owner", "stateMutability": "view", "inputs": [],
		"outputs": [{"name": "", "type": "address"}]},
	{"type": "function", "name": "withdraw", "stateMutability": "nonpayable",
		"inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}],
		"outputs": []},
	{"type": "event", "name": "Sponsored", "anonymous": false, "inputs": [
		{"name": "account", "type": "address", "indexed": true},
		{"name": "token", "type": "address", "indexed": true},
		{"name": "pulled", "type": "uint256", "indexed": false},
		{"name": "fee", "type": "uint256", "indexed": false}
	]}
]`)
