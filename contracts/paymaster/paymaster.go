package paymaster

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/contracts/token"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

// Name under which the paymaster implementation is registered
const Name = "NotusPaymaster"

// Bytecode is the code whose fingerprint selects this implementation
var Bytecode = abis.Artifact(Name)

// DefaultPrice is the token amount asked for one sponsored operation
// when the deployer does not set one
var DefaultPrice = big.NewInt(1_000_000)

var (
	slotToken   = runtime.SlotHash(0)
	slotFactory = runtime.SlotHash(1)
	slotOwner   = runtime.SlotHash(2)
	slotPrice   = runtime.SlotHash(3)

	sponsoredTopic = abis.EventTopic(abis.PaymasterABI, "Sponsored")
)

// flowHandler sponsors op according to one paymaster flow
type flowHandler func(host runtime.Host, self types.Address, op *types.Operation, flow *types.PaymasterFlow) error

// Paymaster pays the fee of accounts in exchange for an amount of its token
type Paymaster struct {
	handlers map[types.PaymasterFlowKind]flowHandler
}

func New() *Paymaster {
	p := &Paymaster{}
	p.handlers = map[types.PaymasterFlowKind]flowHandler{
		types.FlowApprovalBased: p.approvalBased,
	}

	return p
}

// Config is the configuration stored by a paymaster instance
type Config struct {
	Token   types.Address
	Factory types.Address
	Owner   types.Address

	// Price is the least token amount pulled for one sponsored operation
	Price *big.Int
}

// ReadConfig returns the configuration of the paymaster at self
func ReadConfig(host runtime.Host, self types.Address) *Config {
	return &Config{
		Token:   runtime.HashToAddress(host.GetStorage(self, slotToken)),
		Factory: runtime.HashToAddress(host.GetStorage(self, slotFactory)),
		Owner:   runtime.HashToAddress(host.GetStorage(self, slotOwner)),
		Price:   runtime.HashToBig(host.GetStorage(self, slotPrice)),
	}
}

// ConstructorArgs encodes (token, factory, price). A zero factory sponsors any account.
func ConstructorArgs(tokenAddr, factoryAddr types.Address, price *big.Int) ([]byte, error) {
	return abis.PaymasterABI.Pack("", common.Address(tokenAddr), common.Address(factoryAddr), price)
}

// Construct stores (token, factory, price); the deployer becomes the owner
func (p *Paymaster) Construct(host runtime.Host, self, deployer types.Address, input []byte) error {
	args, err := abis.PaymasterABI.Constructor.Inputs.Unpack(input)
	if err != nil {
		return runtime.Revert("invalid constructor arguments: %v", err)
	}

	//nolint:forcetypeassert
	tokenAddr, factoryAddr := types.Address(args[0].(common.Address)), types.Address(args[1].(common.Address))
	if tokenAddr == types.ZeroAddress {
		return runtime.Revert("token is the zero address")
	}

	price, _ := args[2].(*big.Int)
	if price == nil || price.Sign() <= 0 {
		return runtime.Revert("price must be positive")
	}

	host.SetStorage(self, slotToken, tokenAddr.Hash())
	host.SetStorage(self, slotFactory, factoryAddr.Hash())
	host.SetStorage(self, slotOwner, deployer.Hash())
	host.SetStorage(self, slotPrice, runtime.BigToHash(price))

	return nil
}

func (p *Paymaster) Run(host runtime.Host, call *runtime.Call) ([]byte, error) {
	if len(call.Input) == 0 {
		// native deposits fund the reserve
		return nil, nil
	}

	method, args, err := abis.DecodeCall(abis.PaymasterABI, call.Input)
	if err != nil {
		return nil, runtime.Revert("%v", err)
	}

	config := ReadConfig(host, call.Address)

	switch method.Name {
	case "token":
		return method.Outputs.Pack(common.Address(config.Token))

	case "factory":
		return method.Outputs.Pack(common.Address(config.Factory))

	case "price":
		return method.Outputs.Pack(config.Price)

	case "owner":
		return method.Outputs.Pack(common.Address(config.Owner))

	case "withdraw":
		if call.Caller != config.Owner {
			return nil, runtime.Revert("caller is not the owner")
		}

		//nolint:forcetypeassert
		to, amount := types.Address(args[0].(common.Address)), args[1].(*big.Int)

		return nil, host.Transfer(call.Address, to, amount)
	}

	return nil, runtime.Revert("method %s not implemented", method.Name)
}

func (p *Paymaster) ValidateAndPayForPaymasterTransaction(host runtime.Host, op *types.Operation) error {
	flow, err := types.DecodePaymasterFlow(op.PaymasterInput())
	if err != nil {
		return fmt.Errorf("%w: %v", runtime.ErrUnsupportedFlow, err)
	}

	handler, ok := p.handlers[flow.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", runtime.ErrUnsupportedFlow, flow.Kind)
	}

	return handler(host, op.Paymaster(), op, flow)
}

// approvalBased pulls the minimal allowance of the token from the account and
// advances the whole fee. The allowance must have been granted beforehand and
// the declared amount must cover the paymaster price.
func (p *Paymaster) approvalBased(
	host runtime.Host,
	self types.Address,
	op *types.Operation,
	flow *types.PaymasterFlow,
) error {
	config := ReadConfig(host, self)

	if flow.Token != config.Token {
		return fmt.Errorf("%w: token %s is not accepted", runtime.ErrUnsupportedFlow, flow.Token)
	}

	if config.Factory != types.ZeroAddress {
		if err := checkEligible(host, self, config.Factory, op.From); err != nil {
			return err
		}
	}

	if flow.MinimalAllowance == nil || flow.MinimalAllowance.Cmp(config.Price) < 0 {
		return fmt.Errorf("%w: offered %s, price %s", runtime.ErrInsufficientAllowance, flow.MinimalAllowance, config.Price)
	}

	fee := op.MaxFee()
	if reserve := host.GetBalance(self); reserve.Cmp(fee) < 0 {
		return fmt.Errorf("%w: reserve %s, fee %s", runtime.ErrPaymasterUnderfunded, reserve, fee)
	}

	ledger := token.NewLedger(host, config.Token, self, 0)

	allowance, err := ledger.Allowance(op.From, self)
	if err != nil {
		return err
	}

	if allowance.Cmp(flow.MinimalAllowance) < 0 {
		return fmt.Errorf("%w: allowance %s, required %s", runtime.ErrInsufficientAllowance, allowance, flow.MinimalAllowance)
	}

	if err := ledger.TransferFrom(op.From, self, flow.MinimalAllowance); err != nil {
		return err
	}

	if err := host.Transfer(self, runtime.BootloaderAddress, fee); err != nil {
		return err
	}

	data, err := abis.PaymasterABI.Events["Sponsored"].Inputs.NonIndexed().Pack(flow.MinimalAllowance, fee)
	if err != nil {
		return err
	}

	host.EmitLog(self, []types.Hash{sponsoredTopic, op.From.Hash(), config.Token.Hash()}, data)

	return nil
}

// checkEligible only lets accounts running the factory code be sponsored
func checkEligible(host runtime.Host, self, factoryAddr, account types.Address) error {
	input, err := abis.FactoryABI.Pack("aaBytecodeHash")
	if err != nil {
		return err
	}

	ret, err := host.Call(&runtime.Call{
		Caller:  self,
		Address: factoryAddr,
		Value:   big.NewInt(0),
		Input:   input,
		Depth:   1,
	})
	if err != nil {
		return fmt.Errorf("%w: factory %s: %v", runtime.ErrNotEligible, factoryAddr, err)
	}

	outputs, err := abis.FactoryABI.Unpack("aaBytecodeHash", ret)
	if err != nil {
		return fmt.Errorf("%w: factory %s: %v", runtime.ErrNotEligible, factoryAddr, err)
	}

	expected, _ := outputs[0].([32]byte)
	if host.GetCodeHash(account) != types.Hash(expected) {
		return fmt.Errorf("%w: %s does not run the factory account code", runtime.ErrNotEligible, account)
	}

	return nil
}
