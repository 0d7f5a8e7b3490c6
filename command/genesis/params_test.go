package genesis

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/types"
)

const holder = "0x1010101010101010101010101010101010101010"

func newTestParams(t *testing.T) *genesisParams {
	t.Helper()

	return &genesisParams{
		genesisPath:      filepath.Join(t.TempDir(), command.DefaultGenesisFileName),
		name:             "test",
		chainID:          300,
		deployerRaw:      chain.DevDeployer.String(),
		operatorRaw:      chain.DevOperator.String(),
		tokenName:        "Fee",
		tokenSymbol:      "FEE",
		tokenDecimals:    6,
		paymasterReserve: "1000",
		paymasterPrice:   "5",
		mint:             []string{holder + ":0x10"},
		premine:          []string{holder},
	}
}

func TestGenerateGenesis(t *testing.T) {
	t.Parallel()

	p := newTestParams(t)

	require.NoError(t, p.validateFlags())
	require.NoError(t, p.initRawParams())
	require.NoError(t, p.generateGenesis())

	written, err := chain.ImportFromFile(p.genesisPath)
	require.NoError(t, err)

	assert.Equal(t, uint64(300), written.Params.ChainID)
	assert.Equal(t, chain.DevOperator, written.Params.Operator)
	assert.Equal(t, "FEE", written.Genesis.Token.Symbol)
	assert.Equal(t, "16", (*big.Int)(written.Genesis.Token.Mint[types.StringToAddress(holder)]).String())
	assert.Equal(t, "1000", (*big.Int)(written.Genesis.Paymaster.Reserve).String())
	assert.Equal(t, "5", (*big.Int)(written.Genesis.Paymaster.Price).String())

	// both the premined holder and the deployer get the default balance
	def, _ := new(big.Int).SetString(command.DefaultPremineBalance[2:], 16)
	assert.Equal(t, def.String(), (*big.Int)(written.Genesis.Alloc[types.StringToAddress(holder)].Balance).String())
	assert.Contains(t, written.Genesis.Alloc, chain.DevDeployer)

	// an existing file is never overwritten
	assert.ErrorIs(t, p.validateFlags(), errGenesisExists)
}

func TestGenerateGenesis_NoPaymaster(t *testing.T) {
	t.Parallel()

	p := newTestParams(t)
	p.noPaymaster = true

	require.NoError(t, p.initRawParams())
	assert.Nil(t, p.chain.Genesis.Paymaster)
}

func TestInitRawParams_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(p *genesisParams)
		err    error
	}{
		{"bad deployer", func(p *genesisParams) { p.deployerRaw = "0x12" }, errInvalidAddress},
		{"bad premine address", func(p *genesisParams) { p.premine = []string{"nope:1"} }, errInvalidAddress},
		{"bad mint amount", func(p *genesisParams) { p.mint = []string{holder + ":lots"} }, errInvalidAmount},
		{"mint without amount", func(p *genesisParams) { p.mint = []string{holder} }, errInvalidAmount},
		{"bad reserve", func(p *genesisParams) { p.paymasterReserve = "-1" }, errInvalidAmount},
		{"zero price", func(p *genesisParams) { p.paymasterPrice = "0" }, errInvalidAmount},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			p := newTestParams(t)
			c.mutate(p)

			assert.ErrorIs(t, p.initRawParams(), c.err)
		})
	}
}
