package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/types"
)

const (
	dirFlag              = "dir"
	nameFlag             = "name"
	chainIDFlag          = "chain-id"
	premineFlag          = "premine"
	mintFlag             = "mint"
	deployerFlag         = "deployer"
	operatorFlag         = "operator"
	tokenNameFlag        = "token-name"
	tokenSymbolFlag      = "token-symbol"
	tokenDecimalsFlag    = "token-decimals"
	noPaymasterFlag      = "no-paymaster"
	paymasterReserveFlag = "paymaster-reserve"
	sponsorAnyFlag       = "sponsor-any-account"
	paymasterPriceFlag   = "paymaster-price"
)

var (
	params = &genesisParams{}
)

var (
	errGenesisExists  = errors.New("genesis file already exists")
	errInvalidAddress = errors.New("invalid address")
	errInvalidAmount  = errors.New("invalid amount")
)

type genesisParams struct {
	genesisPath string
	name        string
	chainID     uint64

	premine []string
	mint    []string

	deployerRaw string
	operatorRaw string

	tokenName     string
	tokenSymbol   string
	tokenDecimals uint8

	noPaymaster      bool
	paymasterReserve string
	paymasterPrice   string
	sponsorAny       bool

	chain *chain.Chain
}

func (p *genesisParams) validateFlags() error {
	if _, err := os.Stat(p.genesisPath); err == nil {
		return fmt.Errorf("%w: %s", errGenesisExists, p.genesisPath)
	}

	return nil
}

func (p *genesisParams) initRawParams() error {
	deployer, err := parseAddress(p.deployerRaw)
	if err != nil {
		return fmt.Errorf("--%s: %w", deployerFlag, err)
	}

	operator, err := parseAddress(p.operatorRaw)
	if err != nil {
		return fmt.Errorf("--%s: %w", operatorFlag, err)
	}

	alloc, err := parseAllocations(p.premine, command.DefaultPremineBalance)
	if err != nil {
		return fmt.Errorf("--%s: %w", premineFlag, err)
	}

	mint, err := parseAllocations(p.mint, "")
	if err != nil {
		return fmt.Errorf("--%s: %w", mintFlag, err)
	}

	genesis := &chain.Genesis{
		Deployer: deployer,
		Alloc:    chain.GenesisAlloc{},
		Token: &chain.TokenConfig{
			Name:     p.tokenName,
			Symbol:   p.tokenSymbol,
			Decimals: p.tokenDecimals,
		},
		Factory: &chain.FactoryConfig{},
	}

	// the deployer funds the paymaster reserve
	if _, ok := alloc[deployer]; !ok {
		if alloc[deployer], err = parseAmount(command.DefaultPremineBalance); err != nil {
			return err
		}
	}

	for addr, balance := range alloc {
		genesis.Alloc[addr] = &chain.GenesisAccount{Balance: balance}
	}

	if len(mint) > 0 {
		genesis.Token.Mint = mint
	}

	if !p.noPaymaster {
		reserve, err := parseAmount(p.paymasterReserve)
		if err != nil {
			return fmt.Errorf("--%s: %w", paymasterReserveFlag, err)
		}

		price, err := parseAmount(p.paymasterPrice)
		if err == nil && (*big.Int)(price).Sign() == 0 {
			err = fmt.Errorf("%w: price is zero", errInvalidAmount)
		}

		if err != nil {
			return fmt.Errorf("--%s: %w", paymasterPriceFlag, err)
		}

		genesis.Paymaster = &chain.PaymasterConfig{
			Reserve:    reserve,
			Price:      price,
			AnyAccount: p.sponsorAny,
		}
	}

	p.chain = &chain.Chain{
		Name: p.name,
		Params: &chain.Params{
			ChainID:  p.chainID,
			Operator: operator,
		},
		Genesis: genesis,
	}

	return nil
}

func (p *genesisParams) generateGenesis() error {
	data, err := json.Marshal(p.chain)
	if err != nil {
		return err
	}

	// round trip through the importer so only a loadable chain is written
	if _, err := chain.Import(data); err != nil {
		return err
	}

	return p.chain.Export(p.genesisPath)
}

func (p *genesisParams) getResult() command.CommandResult {
	return &GenesisResult{
		Message: fmt.Sprintf("Genesis written to %s", p.genesisPath),
	}
}

func parseAddress(raw string) (types.Address, error) {
	if !types.IsHexAddress(raw) {
		return types.ZeroAddress, fmt.Errorf("%w: %q", errInvalidAddress, raw)
	}

	return types.StringToAddress(raw), nil
}

func parseAmount(raw string) (*math.HexOrDecimal256, error) {
	amount, ok := math.ParseBig256(raw)
	if raw == "" || !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", errInvalidAmount, raw)
	}

	return (*math.HexOrDecimal256)(amount), nil
}

// parseAllocations parses <address>[:<amount>] entries. An entry without an
// amount gets defaultAmount, or is refused when there is none.
func parseAllocations(entries []string, defaultAmount string) (map[types.Address]*math.HexOrDecimal256, error) {
	result := make(map[types.Address]*math.HexOrDecimal256, len(entries))

	for _, entry := range entries {
		rawAddr, rawAmount, found := strings.Cut(entry, ":")
		if !found {
			rawAmount = defaultAmount
		}

		addr, err := parseAddress(rawAddr)
		if err != nil {
			return nil, err
		}

		amount, err := parseAmount(rawAmount)
		if err != nil {
			return nil, err
		}

		result[addr] = amount
	}

	return result, nil
}
