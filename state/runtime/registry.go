package runtime

import (
	"fmt"
	"sync"

	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/types"
)

// Registry maps code fingerprints to their native implementation
type Registry struct {
	lock      sync.RWMutex
	contracts map[types.Hash]Contract
	names     map[types.Hash]string
	bytecodes map[types.Hash][]byte

	defaultAccount Account
}

func NewRegistry() *Registry {
	return &Registry{
		contracts: make(map[types.Hash]Contract),
		names:     make(map[types.Hash]string),
		bytecodes: make(map[types.Hash][]byte),
	}
}

// Register binds the fingerprint of bytecode to the contract
func (r *Registry) Register(name string, bytecode []byte, contract Contract) (types.Hash, error) {
	hash, err := crypto.HashBytecode(bytecode)
	if err != nil {
		return types.ZeroHash, fmt.Errorf("invalid bytecode for %s: %w", name, err)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.contracts[hash]; ok {
		return types.ZeroHash, fmt.Errorf("%s already registered as %s", hash, r.names[hash])
	}

	r.contracts[hash] = contract
	r.names[hash] = name
	r.bytecodes[hash] = append([]byte(nil), bytecode...)

	return hash, nil
}

// Bytecode returns the code registered under a fingerprint
func (r *Registry) Bytecode(hash types.Hash) ([]byte, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	code, ok := r.bytecodes[hash]

	return code, ok
}

// SetDefaultAccount sets the account logic of addresses without code
func (r *Registry) SetDefaultAccount(account Account) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.defaultAccount = account
}

// DefaultAccount returns the account logic of addresses without code, if any
func (r *Registry) DefaultAccount() (Account, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.defaultAccount, r.defaultAccount != nil
}

// Get returns the implementation for a fingerprint
func (r *Registry) Get(hash types.Hash) (Contract, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.contracts[hash]

	return c, ok
}

// Name returns the registered name of a fingerprint
func (r *Registry) Name(hash types.Hash) string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.names[hash]
}

// Hashes returns every registered fingerprint by name
func (r *Registry) Hashes() map[string]types.Hash {
	r.lock.RLock()
	defer r.lock.RUnlock()

	res := make(map[string]types.Hash, len(r.names))
	for hash, name := range r.names {
		res[name] = hash
	}

	return res
}
