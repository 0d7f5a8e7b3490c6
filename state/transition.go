package state

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/go-hclog"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/helper/keccak"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

var (
	// ContractDeployerAddress emits the deployment logs
	ContractDeployerAddress = types.StringToAddress("0x0000000000000000000000000000000000008006")

	contractDeployedTopic = types.BytesToHash(
		keccak.Keccak256(nil, []byte("ContractDeployed(address,bytes32,address)")),
	)
)

// Transition runs calls and operations against a Txn. It is the Host of native contracts.
type Transition struct {
	logger   hclog.Logger
	txn      *Txn
	state    *State
	registry *runtime.Registry
	chainID  uint64
}

func (t *Transition) Txn() *Txn {
	return t.txn
}

func (t *Transition) ChainID() uint64 {
	return t.chainID
}

func (t *Transition) GetBalance(addr types.Address) *big.Int {
	return new(big.Int).Set(t.txn.GetBalance(addr))
}

func (t *Transition) Transfer(from, to types.Address, amount *big.Int) error {
	return t.txn.Transfer(from, to, amount)
}

func (t *Transition) GetStorage(addr types.Address, key types.Hash) types.Hash {
	val, err := t.txn.GetState(addr, key)
	if err != nil {
		t.logger.Error("failed to read storage", "addr", addr, "key", key, "err", err)

		return types.ZeroHash
	}

	return val
}

func (t *Transition) SetStorage(addr types.Address, key types.Hash, value types.Hash) {
	t.txn.SetState(addr, key, value)
}

func (t *Transition) GetNonce(addr types.Address) uint64 {
	return t.txn.GetNonce(addr)
}

func (t *Transition) IncrementNonceIfEquals(addr types.Address, expected uint64) error {
	return t.txn.IncrementNonceIfEquals(addr, expected)
}

func (t *Transition) GetCodeHash(addr types.Address) types.Hash {
	return t.txn.GetCodeHash(addr)
}

func (t *Transition) EmitLog(addr types.Address, topics []types.Hash, data []byte) {
	t.txn.EmitLog(addr, topics, data)
}

// Call runs a nested call and discards its effects when it fails
func (t *Transition) Call(call *runtime.Call) ([]byte, error) {
	if call.Depth > runtime.MaxCallDepth {
		return nil, runtime.ErrDepthLimit
	}

	snapshot := t.txn.Snapshot()

	ret, err := t.call(call)
	if err != nil {
		t.txn.RevertToSnapshot(snapshot)

		return nil, err
	}

	return ret, nil
}

func (t *Transition) call(call *runtime.Call) ([]byte, error) {
	if err := t.txn.Transfer(call.Caller, call.Address, call.Value); err != nil {
		return nil, err
	}

	codeHash := t.txn.GetCodeHash(call.Address)
	if codeHash == types.ZeroHash {
		// plain value transfer
		return nil, nil
	}

	contract, ok := t.registry.Get(codeHash)
	if !ok {
		return nil, fmt.Errorf("%w: %s at %s", runtime.ErrUnknownCode, codeHash, call.Address)
	}

	return contract.Run(t, call)
}

// Create2 deploys known code at its create2 address
func (t *Transition) Create2(
	deployer types.Address,
	bytecodeHash types.Hash,
	salt types.Hash,
	input []byte,
) (types.Address, error) {
	addr := crypto.CreateAddress2(deployer, bytecodeHash, salt, input)

	if err := t.deploy(deployer, addr, bytecodeHash, input); err != nil {
		return types.ZeroAddress, err
	}

	return addr, nil
}

// Create deploys known code at the address derived from the deployer nonce, which is consumed
func (t *Transition) Create(deployer types.Address, bytecodeHash types.Hash, input []byte) (types.Address, error) {
	nonce := t.txn.GetNonce(deployer)
	addr := crypto.CreateAddress(deployer, nonce)

	if err := t.txn.IncrementNonceIfEquals(deployer, nonce); err != nil {
		return types.ZeroAddress, err
	}

	if err := t.deploy(deployer, addr, bytecodeHash, input); err != nil {
		return types.ZeroAddress, err
	}

	return addr, nil
}

func (t *Transition) deploy(deployer, addr types.Address, bytecodeHash types.Hash, input []byte) error {
	if t.txn.GetCodeHash(addr) != types.ZeroHash || t.txn.GetNonce(addr) != 0 {
		return fmt.Errorf("%w: %s", runtime.ErrAccountExists, addr)
	}

	contract, ok := t.registry.Get(bytecodeHash)
	if !ok {
		return fmt.Errorf("%w: %s", runtime.ErrUnknownCode, bytecodeHash)
	}

	code, _ := t.registry.Bytecode(bytecodeHash)

	snapshot := t.txn.Snapshot()

	t.txn.SetCode(addr, bytecodeHash, code)

	if constructor, ok := contract.(runtime.Constructor); ok {
		if err := constructor.Construct(t, addr, deployer, input); err != nil {
			t.txn.RevertToSnapshot(snapshot)

			return err
		}
	}

	t.txn.EmitLog(
		ContractDeployerAddress,
		[]types.Hash{contractDeployedTopic, deployer.Hash(), bytecodeHash, addr.Hash()},
		nil,
	)

	t.logger.Debug("contract deployed", "name", t.registry.Name(bytecodeHash), "addr", addr, "deployer", deployer)

	return nil
}

// Commit persists the transition into the state it was opened on
func (t *Transition) Commit() error {
	return t.state.Commit(t.txn.Commit())
}

// CommitWith persists the transition in the same write as the entries the
// caller staged in batch
func (t *Transition) CommitWith(batch kvdb.Batch) error {
	return t.state.CommitWith(batch, t.txn.Commit())
}
