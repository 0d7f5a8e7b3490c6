package command

import "github.com/notuslabs/notus-aa/chain"

const (
	DefaultGenesisFileName = "genesis.json"
	DefaultChainName       = chain.DevChainName
	DefaultDataDir         = "./notus-data"
	DefaultTokenName       = "Mock Token"
	DefaultTokenSymbol     = "mToken"
	DefaultPremineBalance  = "0x3635C9ADC5DEA00000" // 1000 ETH
)

const (
	JSONOutputFlag    = "json"
	JSONRPCFlag       = "jsonrpc"
	PprofFlag         = "pprof"
	PprofAddressFlag  = "pprof-address"
	JaegerFlag        = "jaeger"
	JaegerAddressFlag = "jaeger-address"
)
