package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/hashicorp/go-multierror"
	"github.com/notuslabs/notus-aa/contracts"
	"github.com/notuslabs/notus-aa/contracts/factory"
	"github.com/notuslabs/notus-aa/contracts/paymaster"
	"github.com/notuslabs/notus-aa/contracts/token"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/state"
	"github.com/notuslabs/notus-aa/types"
)

var (
	ErrPaymasterWithoutToken = errors.New("paymaster needs the token deployment")
	ErrNoDeployer            = errors.New("deployments need a deployer")
	ErrNonPositivePrice      = errors.New("paymaster price must be positive")
)

// GenesisAlloc is the initial native balances of the ledger
type GenesisAlloc map[types.Address]*GenesisAccount

type GenesisAccount struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
}

func (a *GenesisAccount) balance() *big.Int {
	if a == nil || a.Balance == nil {
		return big.NewInt(0)
	}

	return new(big.Int).Set((*big.Int)(a.Balance))
}

type TokenConfig struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`

	// Mint are the initial token holders
	Mint map[types.Address]*math.HexOrDecimal256 `json:"mint,omitempty"`
}

type FactoryConfig struct {
	// AccountBytecodeHash overrides the wallet fingerprint the factory deploys
	AccountBytecodeHash *types.Hash `json:"accountBytecodeHash,omitempty"`
}

type PaymasterConfig struct {
	// Reserve is the native amount the deployer funds the paymaster with
	Reserve *math.HexOrDecimal256 `json:"reserve,omitempty"`

	// Price is the least token amount pulled per sponsored operation,
	// paymaster.DefaultPrice when unset
	Price *math.HexOrDecimal256 `json:"price,omitempty"`

	// AnyAccount sponsors senders that were not created by the factory
	AnyAccount bool `json:"anyAccount,omitempty"`
}

// Genesis is the ledger content before the first operation: native balances and
// the token, factory and paymaster deployments, in that order
type Genesis struct {
	Deployer types.Address `json:"deployer"`
	Alloc    GenesisAlloc  `json:"alloc,omitempty"`

	Token     *TokenConfig     `json:"token,omitempty"`
	Factory   *FactoryConfig   `json:"factory,omitempty"`
	Paymaster *PaymasterConfig `json:"paymaster,omitempty"`
}

// Deployed holds the addresses of the genesis contracts
type Deployed struct {
	Token               types.Address `json:"token"`
	Factory             types.Address `json:"factory"`
	Paymaster           types.Address `json:"paymaster"`
	AccountBytecodeHash types.Hash    `json:"accountBytecodeHash"`
}

func (g *Genesis) validate() error {
	var result *multierror.Error

	hasDeployments := g.Token != nil || g.Factory != nil || g.Paymaster != nil

	if hasDeployments && g.Deployer == types.ZeroAddress {
		result = multierror.Append(result, ErrNoDeployer)
	}

	if g.Paymaster != nil && g.Token == nil {
		result = multierror.Append(result, ErrPaymasterWithoutToken)
	}

	if g.Paymaster != nil && g.Paymaster.Price != nil && (*big.Int)(g.Paymaster.Price).Sign() <= 0 {
		result = multierror.Append(result, ErrNonPositivePrice)
	}

	if g.Token != nil && (g.Token.Name == "" || g.Token.Symbol == "") {
		result = multierror.Append(result, fmt.Errorf("token needs a name and a symbol"))
	}

	return result.ErrorOrNil()
}

// Hash identifies the genesis, a node refuses to open a store written from another one
func (g *Genesis) Hash() types.Hash {
	data, err := json.Marshal(g)
	if err != nil {
		panic(fmt.Errorf("genesis encoding failed: %w", err))
	}

	return crypto.Keccak256Hash(data)
}

// Addresses predicts where Write deploys the contracts. Each deployment consumes
// one deployer nonce, starting at zero.
func (g *Genesis) Addresses(hashes *contracts.Fingerprints) *Deployed {
	deployed := &Deployed{AccountBytecodeHash: g.accountBytecodeHash(hashes)}
	nonce := uint64(0)

	next := func() types.Address {
		addr := crypto.CreateAddress(g.Deployer, nonce)
		nonce++

		return addr
	}

	if g.Token != nil {
		deployed.Token = next()
	}

	if g.Factory != nil {
		deployed.Factory = next()
	}

	if g.Paymaster != nil {
		deployed.Paymaster = next()
	}

	return deployed
}

func (g *Genesis) accountBytecodeHash(hashes *contracts.Fingerprints) types.Hash {
	if g.Factory != nil && g.Factory.AccountBytecodeHash != nil {
		return *g.Factory.AccountBytecodeHash
	}

	return hashes.Wallet
}

// Write applies the genesis on top of the committed state of the executor
func (g *Genesis) Write(ex *state.Executor, hashes *contracts.Fingerprints) (*Deployed, error) {
	return g.WriteWith(ex, hashes, nil)
}

// WriteWith is Write committing into batch, next to what the caller staged
// there. A nil batch commits on its own.
func (g *Genesis) WriteWith(ex *state.Executor, hashes *contracts.Fingerprints, batch kvdb.Batch) (*Deployed, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	t := ex.BeginTxn()

	for _, addr := range sortedAddresses(g.Alloc) {
		t.Txn().AddBalance(addr, g.Alloc[addr].balance())
	}

	deployed := &Deployed{AccountBytecodeHash: g.accountBytecodeHash(hashes)}

	if g.Token != nil {
		args, err := token.ConstructorArgs(g.Token.Name, g.Token.Symbol, g.Token.Decimals)
		if err != nil {
			return nil, err
		}

		if deployed.Token, err = ex.Deploy(t, g.Deployer, hashes.Token, args); err != nil {
			return nil, fmt.Errorf("token deployment: %w", err)
		}

		ledger := token.NewLedger(t, deployed.Token, g.Deployer, 0)

		for _, holder := range sortedAddresses(g.Token.Mint) {
			if err := ledger.Mint(holder, (*big.Int)(g.Token.Mint[holder])); err != nil {
				return nil, fmt.Errorf("token mint to %s: %w", holder, err)
			}
		}
	}

	if g.Factory != nil {
		args, err := factory.ConstructorArgs(deployed.AccountBytecodeHash)
		if err != nil {
			return nil, err
		}

		if deployed.Factory, err = ex.Deploy(t, g.Deployer, hashes.Factory, args); err != nil {
			return nil, fmt.Errorf("factory deployment: %w", err)
		}
	}

	if g.Paymaster != nil {
		eligibility := deployed.Factory
		if g.Paymaster.AnyAccount {
			eligibility = types.ZeroAddress
		}

		price := paymaster.DefaultPrice
		if g.Paymaster.Price != nil {
			price = (*big.Int)(g.Paymaster.Price)
		}

		args, err := paymaster.ConstructorArgs(deployed.Token, eligibility, price)
		if err != nil {
			return nil, err
		}

		if deployed.Paymaster, err = ex.Deploy(t, g.Deployer, hashes.Paymaster, args); err != nil {
			return nil, fmt.Errorf("paymaster deployment: %w", err)
		}

		if reserve := g.Paymaster.Reserve; reserve != nil && (*big.Int)(reserve).Sign() > 0 {
			if _, err := ex.Call(t, g.Deployer, deployed.Paymaster, (*big.Int)(reserve), nil); err != nil {
				return nil, fmt.Errorf("paymaster funding: %w", err)
			}
		}
	}

	commit := t.Commit
	if batch != nil {
		commit = func() error { return t.CommitWith(batch) }
	}

	if err := commit(); err != nil {
		return nil, err
	}

	return deployed, nil
}

func sortedAddresses[V any](m map[types.Address]V) []types.Address {
	addrs := make([]types.Address, 0, len(m))
	for addr := range m {
		addrs = append(addrs, addr)
	}

	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i].Bytes()) < string(addrs[j].Bytes())
	})

	return addrs
}
