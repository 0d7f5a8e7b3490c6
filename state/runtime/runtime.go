package runtime

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/notuslabs/notus-aa/types"
)

// MaxCallDepth is the deepest nesting of calls a single operation may reach
const MaxCallDepth = 64

var (
	// BootloaderAddress collects the fee of an operation while it is processed
	BootloaderAddress = types.StringToAddress("0x0000000000000000000000000000000000008001")
)

var (
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrNonceMismatch         = errors.New("nonce mismatch")
	ErrMalformedBatch        = errors.New("malformed batch")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrPaymasterUnderfunded  = errors.New("paymaster is underfunded")
	ErrUnsupportedFlow       = errors.New("unsupported paymaster flow")
	ErrNotEligible           = errors.New("account not eligible for sponsorship")
	ErrExecutionReverted     = errors.New("execution reverted")
	ErrNotEnoughFunds        = errors.New("not enough funds")
	ErrAccountExists         = errors.New("account already exists")
	ErrUnknownCode           = errors.New("unknown code")
	ErrDepthLimit            = errors.New("max call depth exceeded")
	ErrNotAccount            = errors.New("address is not an account contract")
	ErrNotPaymaster          = errors.New("address is not a paymaster contract")
)

// RevertError is returned by contracts that refuse a call
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExecutionReverted.Error(), e.Reason)
}

func (e *RevertError) Is(target error) bool {
	return target == ErrExecutionReverted
}

// Revert returns a revert error with a formatted reason
func Revert(format string, args ...interface{}) error {
	return &RevertError{Reason: fmt.Sprintf(format, args...)}
}

// Call is a message from Caller to the contract at Address
type Call struct {
	Caller  types.Address
	Address types.Address
	Value   *big.Int
	Input   []byte
	Depth   int
}

// Selector returns the first four bytes of the input, if any
func (c *Call) Selector() []byte {
	if len(c.Input) < 4 {
		return nil
	}

	return c.Input[:4]
}

// Host is the ledger a contract reads and writes through
type Host interface {
	ChainID() uint64

	GetBalance(addr types.Address) *big.Int
	Transfer(from, to types.Address, amount *big.Int) error

	GetStorage(addr types.Address, key types.Hash) types.Hash
	SetStorage(addr types.Address, key types.Hash, value types.Hash)

	GetNonce(addr types.Address) uint64
	// IncrementNonceIfEquals bumps the sequence number of addr only when it currently equals expected
	IncrementNonceIfEquals(addr types.Address, expected uint64) error

	GetCodeHash(addr types.Address) types.Hash

	// Create2 deploys known code at its deterministic address and runs its constructor
	Create2(deployer types.Address, bytecodeHash, salt types.Hash, input []byte) (types.Address, error)

	// Call runs a nested call. Its effects are discarded when it fails.
	Call(call *Call) ([]byte, error)

	EmitLog(addr types.Address, topics []types.Hash, data []byte)
}

// Contract is a native implementation bound to a code fingerprint
type Contract interface {
	Run(host Host, call *Call) ([]byte, error)
}

// Constructor initializes the storage of a new instance
type Constructor interface {
	Construct(host Host, self, deployer types.Address, input []byte) error
}

// Account is a contract that validates and runs operations on its own behalf
type Account interface {
	Contract

	// ValidateTransaction consumes the sequence number of op and checks its signature over digest
	ValidateTransaction(host Host, op *types.Operation, digest types.Hash) error

	// PayForTransaction sends the maximum fee of op to the bootloader
	PayForTransaction(host Host, op *types.Operation) error

	// PrepareForPaymaster is run before a sponsored op is charged to the paymaster
	PrepareForPaymaster(host Host, op *types.Operation) error

	// ExecuteTransaction performs the call carried by op
	ExecuteTransaction(host Host, op *types.Operation) error
}

// Paymaster is a contract that pays the fee of operations it agrees to sponsor
type Paymaster interface {
	Contract

	ValidateAndPayForPaymasterTransaction(host Host, op *types.Operation) error
}
