package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

// Name under which the token implementation is registered
const Name = "MockToken"

// Bytecode is the code whose fingerprint selects this implementation
var Bytecode = abis.Artifact(Name)

// Storage layout
const (
	slotTotalSupply uint64 = iota
	slotName
	slotSymbol
	slotDecimals
	slotBalances
	slotAllowances
)

var (
	transferTopic = abis.EventTopic(abis.TokenABI, "Transfer")
	approvalTopic = abis.EventTopic(abis.TokenABI, "Approval")
)

// Token is a mintable ERC-20. Anybody may mint, it only serves as fee currency on dev networks.
type Token struct{}

func New() *Token {
	return &Token{}
}

// ConstructorArgs encodes the token metadata
func ConstructorArgs(name, symbol string, decimals uint8) ([]byte, error) {
	return abis.TokenABI.Pack("", name, symbol, decimals)
}

// Construct stores the metadata passed as abi encoded (name, symbol, decimals)
func (t *Token) Construct(host runtime.Host, self, deployer types.Address, input []byte) error {
	args, err := abis.TokenABI.Constructor.Inputs.Unpack(input)
	if err != nil {
		return runtime.Revert("invalid constructor arguments: %v", err)
	}

	//nolint:forcetypeassert
	name, symbol, decimals := args[0].(string), args[1].(string), args[2].(uint8)

	s := &store{host: host, self: self}
	s.setString(slotName, name)
	s.setString(slotSymbol, symbol)
	host.SetStorage(self, runtime.SlotHash(slotDecimals), runtime.BigToHash(big.NewInt(int64(decimals))))

	return nil
}

func (t *Token) Run(host runtime.Host, call *runtime.Call) ([]byte, error) {
	if call.Value != nil && call.Value.Sign() != 0 {
		return nil, runtime.Revert("token does not accept native value")
	}

	method, args, err := abis.DecodeCall(abis.TokenABI, call.Input)
	if err != nil {
		return nil, runtime.Revert("%v", err)
	}

	s := &store{host: host, self: call.Address}

	//nolint:forcetypeassert
	switch method.Name {
	case "name":
		return method.Outputs.Pack(s.getString(slotName))

	case "symbol":
		return method.Outputs.Pack(s.getString(slotSymbol))

	case "decimals":
		decimals := runtime.HashToBig(host.GetStorage(call.Address, runtime.SlotHash(slotDecimals)))

		return method.Outputs.Pack(uint8(decimals.Uint64()))

	case "totalSupply":
		return method.Outputs.Pack(s.totalSupply())

	case "balanceOf":
		return method.Outputs.Pack(s.balanceOf(toAddress(args[0])))

	case "allowance":
		return method.Outputs.Pack(s.allowance(toAddress(args[0]), toAddress(args[1])))

	case "approve":
		s.approve(call.Caller, toAddress(args[0]), args[1].(*big.Int))

		return method.Outputs.Pack(true)

	case "transfer":
		if err := s.transfer(call.Caller, toAddress(args[0]), args[1].(*big.Int)); err != nil {
			return nil, err
		}

		return method.Outputs.Pack(true)

	case "transferFrom":
		from, to, amount := toAddress(args[0]), toAddress(args[1]), args[2].(*big.Int)

		if err := s.spendAllowance(from, call.Caller, amount); err != nil {
			return nil, err
		}

		if err := s.transfer(from, to, amount); err != nil {
			return nil, err
		}

		return method.Outputs.Pack(true)

	case "mint":
		if err := s.mint(toAddress(args[0]), args[1].(*big.Int)); err != nil {
			return nil, err
		}

		return nil, nil
	}

	return nil, runtime.Revert("method %s not implemented", method.Name)
}

func toAddress(v interface{}) types.Address {
	//nolint:forcetypeassert
	return types.Address(v.(common.Address))
}

// store reads and writes the token storage of one instance
type store struct {
	host runtime.Host
	self types.Address
}

func (s *store) get(slot types.Hash) *big.Int {
	return runtime.HashToBig(s.host.GetStorage(s.self, slot))
}

func (s *store) set(slot types.Hash, v *big.Int) {
	s.host.SetStorage(s.self, slot, runtime.BigToHash(v))
}

func balanceSlot(owner types.Address) types.Hash {
	return runtime.MappingSlot(owner.Hash(), runtime.SlotHash(slotBalances))
}

func allowanceSlot(owner, spender types.Address) types.Hash {
	inner := runtime.MappingSlot(owner.Hash(), runtime.SlotHash(slotAllowances))

	return runtime.MappingSlot(spender.Hash(), inner)
}

func (s *store) totalSupply() *big.Int {
	return s.get(runtime.SlotHash(slotTotalSupply))
}

func (s *store) balanceOf(owner types.Address) *big.Int {
	return s.get(balanceSlot(owner))
}

func (s *store) allowance(owner, spender types.Address) *big.Int {
	return s.get(allowanceSlot(owner, spender))
}

func (s *store) emit(topic types.Hash, a, b types.Address, value *big.Int) {
	s.host.EmitLog(s.self, []types.Hash{topic, a.Hash(), b.Hash()}, runtime.BigToHash(value).Bytes())
}

func (s *store) approve(owner, spender types.Address, amount *big.Int) {
	s.set(allowanceSlot(owner, spender), amount)
	s.emit(approvalTopic, owner, spender, amount)
}

func (s *store) spendAllowance(owner, spender types.Address, amount *big.Int) error {
	current := s.allowance(owner, spender)
	if current.Cmp(amount) < 0 {
		return runtime.Revert("ERC20: insufficient allowance")
	}

	s.set(allowanceSlot(owner, spender), new(big.Int).Sub(current, amount))

	return nil
}

func (s *store) transfer(from, to types.Address, amount *big.Int) error {
	if to == types.ZeroAddress {
		return runtime.Revert("ERC20: transfer to the zero address")
	}

	balance := s.balanceOf(from)
	if balance.Cmp(amount) < 0 {
		return runtime.Revert("ERC20: transfer amount exceeds balance")
	}

	s.set(balanceSlot(from), new(big.Int).Sub(balance, amount))
	s.set(balanceSlot(to), new(big.Int).Add(s.balanceOf(to), amount))
	s.emit(transferTopic, from, to, amount)

	return nil
}

func (s *store) mint(to types.Address, amount *big.Int) error {
	if to == types.ZeroAddress {
		return runtime.Revert("ERC20: mint to the zero address")
	}

	s.set(runtime.SlotHash(slotTotalSupply), new(big.Int).Add(s.totalSupply(), amount))
	s.set(balanceSlot(to), new(big.Int).Add(s.balanceOf(to), amount))
	s.emit(transferTopic, types.ZeroAddress, to, amount)

	return nil
}

// Strings are stored as a length word followed by the data words from keccak(slot, 0)
func (s *store) setString(slot uint64, value string) {
	base := runtime.SlotHash(slot)
	s.set(base, big.NewInt(int64(len(value))))

	data := runtime.MappingSlot(base, types.ZeroHash)
	for i := 0; i*types.HashLength < len(value); i++ {
		end := (i + 1) * types.HashLength
		if end > len(value) {
			end = len(value)
		}

		var word types.Hash

		copy(word[:], value[i*types.HashLength:end])
		s.host.SetStorage(s.self, runtime.OffsetSlot(data, uint64(i)), word)
	}
}

func (s *store) getString(slot uint64) string {
	base := runtime.SlotHash(slot)
	length := int(s.get(base).Uint64())

	buf := make([]byte, 0, length)

	data := runtime.MappingSlot(base, types.ZeroHash)
	for i := 0; len(buf) < length; i++ {
		word := s.host.GetStorage(s.self, runtime.OffsetSlot(data, uint64(i)))

		n := length - len(buf)
		if n > types.HashLength {
			n = types.HashLength
		}

		buf = append(buf, word[:n]...)
	}

	return string(buf)
}
