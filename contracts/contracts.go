package contracts

import (
	"github.com/notuslabs/notus-aa/contracts/factory"
	"github.com/notuslabs/notus-aa/contracts/paymaster"
	"github.com/notuslabs/notus-aa/contracts/token"
	"github.com/notuslabs/notus-aa/contracts/wallet"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

// Fingerprints are the code hashes of the native contracts
type Fingerprints struct {
	Token     types.Hash
	Wallet    types.Hash
	Factory   types.Hash
	Paymaster types.Hash
}

// NewRegistry returns a registry with every native contract, and the default
// account for addresses without code
func NewRegistry() (*runtime.Registry, *Fingerprints, error) {
	var (
		registry = runtime.NewRegistry()
		hashes   = &Fingerprints{}
		err      error
	)

	entries := []struct {
		name     string
		bytecode []byte
		contract runtime.Contract
		hash     *types.Hash
	}{
		{token.Name, token.Bytecode, token.New(), &hashes.Token},
		{wallet.Name, wallet.Bytecode, wallet.New(), &hashes.Wallet},
		{factory.Name, factory.Bytecode, factory.New(), &hashes.Factory},
		{paymaster.Name, paymaster.Bytecode, paymaster.New(), &hashes.Paymaster},
	}

	for _, e := range entries {
		if *e.hash, err = registry.Register(e.name, e.bytecode, e.contract); err != nil {
			return nil, nil, err
		}
	}

	registry.SetDefaultAccount(wallet.NewDefaultAccount())

	return registry, hashes, nil
}
