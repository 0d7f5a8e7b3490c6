package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/notuslabs/notus-aa/types"
)

const (
	DevChainName = "dev"
	DevChainID   = 270
)

var (
	// DevDeployer is the prefunded account deploying the dev contracts
	DevDeployer = types.StringToAddress("0x36615Cf349d7F6344891B1e7CA7C72883F5dc049")
	// DevOperator is the dev fee account
	DevOperator = types.StringToAddress("0xa61464658AfeAf65CccaaFD3a512b69A83B77618")
)

var presets = map[string]func() *Chain{
	DevChainName: DevChain,
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// DevChain is a single node chain with a mock token, the account factory and
// a token paymaster holding 0.1 native
func DevChain() *Chain {
	return &Chain{
		Name: DevChainName,
		Params: &Params{
			ChainID:  DevChainID,
			Operator: DevOperator,
		},
		Genesis: &Genesis{
			Deployer: DevDeployer,
			Alloc: GenesisAlloc{
				DevDeployer: {Balance: (*math.HexOrDecimal256)(ether(1000))},
			},
			Token: &TokenConfig{
				Name:     "Mock Token",
				Symbol:   "mToken",
				Decimals: 18,
			},
			Factory: &FactoryConfig{},
			Paymaster: &PaymasterConfig{
				Reserve: (*math.HexOrDecimal256)(new(big.Int).Div(ether(1), big.NewInt(10))),
			},
		},
	}
}
