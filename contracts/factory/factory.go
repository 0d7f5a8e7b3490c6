package factory

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

// Name under which the factory implementation is registered
const Name = "AAFactory"

// Bytecode is the code whose fingerprint selects this implementation
var Bytecode = abis.Artifact(Name)

var (
	slotBytecodeHash = runtime.SlotHash(0)

	accountCreatedTopic = abis.EventTopic(abis.FactoryABI, "AccountCreated")
)

// Factory deploys accounts at addresses derived from (salt, owner)
type Factory struct{}

func New() *Factory {
	return &Factory{}
}

// ConstructorArgs encodes the account fingerprint the factory deploys
func ConstructorArgs(accountBytecodeHash types.Hash) ([]byte, error) {
	return abis.FactoryABI.Pack("", [32]byte(accountBytecodeHash))
}

// AccountInput returns the abi encoded owner passed to every account
func AccountInput(owner types.Address) []byte {
	return owner.Hash().Bytes()
}

// ComputeAddress returns where the factory deploys the account of (salt, owner)
func ComputeAddress(factory types.Address, bytecodeHash, salt types.Hash, owner types.Address) types.Address {
	return crypto.CreateAddress2(factory, bytecodeHash, salt, AccountInput(owner))
}

// BytecodeHash returns the account fingerprint used by the factory at self
func BytecodeHash(host runtime.Host, self types.Address) types.Hash {
	return host.GetStorage(self, slotBytecodeHash)
}

func (f *Factory) Construct(host runtime.Host, self, deployer types.Address, input []byte) error {
	args, err := abis.FactoryABI.Constructor.Inputs.Unpack(input)
	if err != nil {
		return runtime.Revert("invalid constructor arguments: %v", err)
	}

	//nolint:forcetypeassert
	hash := types.Hash(args[0].([32]byte))
	if hash == types.ZeroHash {
		return runtime.Revert("account bytecode hash is zero")
	}

	host.SetStorage(self, slotBytecodeHash, hash)

	return nil
}

func (f *Factory) Run(host runtime.Host, call *runtime.Call) ([]byte, error) {
	if call.Value != nil && call.Value.Sign() != 0 {
		return nil, runtime.Revert("factory does not accept native value")
	}

	method, args, err := abis.DecodeCall(abis.FactoryABI, call.Input)
	if err != nil {
		return nil, runtime.Revert("%v", err)
	}

	switch method.Name {
	case "aaBytecodeHash":
		return method.Outputs.Pack([32]byte(BytecodeHash(host, call.Address)))

	case "getAddress":
		//nolint:forcetypeassert
		salt, owner := types.Hash(args[0].([32]byte)), types.Address(args[1].(common.Address))
		addr := ComputeAddress(call.Address, BytecodeHash(host, call.Address), salt, owner)

		return method.Outputs.Pack(common.Address(addr))

	case "createAccount":
		//nolint:forcetypeassert
		salt, owner := types.Hash(args[0].([32]byte)), types.Address(args[1].(common.Address))

		addr, err := host.Create2(call.Address, BytecodeHash(host, call.Address), salt, AccountInput(owner))
		if err != nil {
			return nil, err
		}

		host.EmitLog(call.Address, []types.Hash{accountCreatedTopic, addr.Hash(), owner.Hash()}, salt.Bytes())

		return method.Outputs.Pack(common.Address(addr))
	}

	return nil, runtime.Revert("method %s not implemented", method.Name)
}
