package account

import (
	"errors"
	"fmt"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/contracts"
	"github.com/notuslabs/notus-aa/contracts/factory"
	"github.com/notuslabs/notus-aa/helper/hex"
	"github.com/notuslabs/notus-aa/types"
)

const (
	ownerFlag = "owner"
	saltFlag  = "salt"
)

var (
	params = &addressParams{}
)

var (
	errInvalidOwner = errors.New("invalid owner address")
	errInvalidSalt  = errors.New("invalid salt")
	errNoFactory    = errors.New("chain has no account factory")
)

type addressParams struct {
	chainRaw string
	ownerRaw string
	saltRaw  string

	chain *chain.Chain
	owner types.Address
	salt  types.Hash
}

func (p *addressParams) getRequiredFlags() []string {
	return []string{
		ownerFlag,
	}
}

func (p *addressParams) initRawParams() error {
	if !types.IsHexAddress(p.ownerRaw) {
		return fmt.Errorf("%w: %q", errInvalidOwner, p.ownerRaw)
	}

	p.owner = types.StringToAddress(p.ownerRaw)

	salt, err := hex.DecodeHex(p.saltRaw)
	if err != nil || len(salt) > types.HashLength {
		return fmt.Errorf("%w: %q", errInvalidSalt, p.saltRaw)
	}

	p.salt = types.BytesToHash(salt)

	if p.chain, err = chain.ImportFromName(p.chainRaw); err != nil {
		return fmt.Errorf("failed to load chain %s: %w", p.chainRaw, err)
	}

	return nil
}

// computeAddress derives the account address from the genesis deployments
func (p *addressParams) computeAddress() (*AddressResult, error) {
	if p.chain.Genesis.Factory == nil {
		return nil, errNoFactory
	}

	_, hashes, err := contracts.NewRegistry()
	if err != nil {
		return nil, err
	}

	deployed := p.chain.Genesis.Addresses(hashes)

	return &AddressResult{
		Factory: deployed.Factory,
		Owner:   p.owner,
		Salt:    p.salt,
		Address: factory.ComputeAddress(deployed.Factory, deployed.AccountBytecodeHash, p.salt, p.owner),
	}, nil
}
