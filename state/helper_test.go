package state

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-hclog"
	"github.com/notuslabs/notus-aa/contracts"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/contracts/factory"
	"github.com/notuslabs/notus-aa/contracts/paymaster"
	"github.com/notuslabs/notus-aa/contracts/token"
	"github.com/notuslabs/notus-aa/contracts/wallet"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/require"
)

const testChainID = 270

var (
	oneEther       = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	minAllowance   = big.NewInt(1000000)
	testGasLimit   = uint64(97578666)
	testMaxFee     = big.NewInt(250000000)
	paymasterFunds = new(big.Int).Div(oneEther, big.NewInt(10))

	deployerAddr = types.StringToAddress("0x36615Cf349d7F6344891B1e7CA7C72883F5dc049")
	operatorAddr = types.StringToAddress("0x00000000000000000000000000000000000000fe")
)

// testEnv has a token, a factory, a funded paymaster and one account
type testEnv struct {
	t *testing.T

	executor *Executor
	hashes   *contracts.Fingerprints

	token     types.Address
	factory   types.Address
	paymaster types.Address

	ownerKey *ecdsa.PrivateKey
	owner    types.Address
	account  types.Address
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	registry, hashes, err := contracts.NewRegistry()
	require.NoError(t, err)

	st := NewState(hclog.NewNullLogger(), kvdb.NewMemoryStorage())
	executor := NewExecutor(hclog.NewNullLogger(), st, registry, testChainID, operatorAddr)

	ownerKey, err := crypto.GenerateECDSAKey()
	require.NoError(t, err)

	env := &testEnv{
		t:        t,
		executor: executor,
		hashes:   hashes,
		ownerKey: ownerKey,
		owner:    crypto.PubKeyToAddress(&ownerKey.PublicKey),
	}

	tr := executor.BeginTxn()
	tr.Txn().AddBalance(deployerAddr, new(big.Int).Mul(oneEther, big.NewInt(100)))

	tokenArgs, err := token.ConstructorArgs("Mock Token", "mToken", 18)
	require.NoError(t, err)

	env.token, err = executor.Deploy(tr, deployerAddr, hashes.Token, tokenArgs)
	require.NoError(t, err)

	factoryArgs, err := factory.ConstructorArgs(hashes.Wallet)
	require.NoError(t, err)

	env.factory, err = executor.Deploy(tr, deployerAddr, hashes.Factory, factoryArgs)
	require.NoError(t, err)

	paymasterArgs, err := paymaster.ConstructorArgs(env.token, env.factory, minAllowance)
	require.NoError(t, err)

	env.paymaster, err = executor.Deploy(tr, deployerAddr, hashes.Paymaster, paymasterArgs)
	require.NoError(t, err)

	_, err = executor.Call(tr, deployerAddr, env.paymaster, paymasterFunds, nil)
	require.NoError(t, err)

	env.account = env.createAccount(tr, types.ZeroHash)
	env.mint(tr, env.account, big.NewInt(5000000))

	require.NoError(t, tr.Commit())

	return env
}

// scoped returns a view of the environment that reports to t
func (e *testEnv) scoped(t *testing.T) *testEnv {
	t.Helper()

	scoped := *e
	scoped.t = t

	return &scoped
}

func (e *testEnv) call(tr *Transition, from, to types.Address, contract *abi.ABI, method string, args ...interface{}) []interface{} {
	e.t.Helper()

	input, err := contract.Pack(method, args...)
	require.NoError(e.t, err)

	ret, err := e.executor.Call(tr, from, to, nil, input)
	require.NoError(e.t, err)

	outputs, err := contract.Unpack(method, ret)
	require.NoError(e.t, err)

	return outputs
}

func (e *testEnv) createAccount(tr *Transition, salt types.Hash) types.Address {
	e.t.Helper()

	outputs := e.call(tr, deployerAddr, e.factory, abis.FactoryABI, "createAccount", [32]byte(salt), common.Address(e.owner))

	//nolint:forcetypeassert
	return types.Address(outputs[0].(common.Address))
}

func (e *testEnv) mint(tr *Transition, to types.Address, amount *big.Int) {
	e.t.Helper()

	e.call(tr, deployerAddr, e.token, abis.TokenABI, "mint", common.Address(to), amount)
}

func (e *testEnv) tokenBalance(tr *Transition, addr types.Address) *big.Int {
	e.t.Helper()

	balance, err := token.NewLedger(tr, e.token, deployerAddr, 0).BalanceOf(addr)
	require.NoError(e.t, err)

	return balance
}

func (e *testEnv) allowance(tr *Transition, owner, spender types.Address) *big.Int {
	e.t.Helper()

	allowance, err := token.NewLedger(tr, e.token, deployerAddr, 0).Allowance(owner, spender)
	require.NoError(e.t, err)

	return allowance
}

func mintCall(tokenAddr, to types.Address, amount *big.Int) wallet.SubCall {
	input, err := abis.TokenABI.Pack("mint", common.Address(to), amount)
	if err != nil {
		panic(err)
	}

	return wallet.SubCall{Target: tokenAddr, Data: input}
}

func transferCall(tokenAddr, to types.Address, amount *big.Int) wallet.SubCall {
	input, err := abis.TokenABI.Pack("transfer", common.Address(to), amount)
	if err != nil {
		panic(err)
	}

	return wallet.SubCall{Target: tokenAddr, Data: input}
}

// batchOp returns an unsigned operation of the account running calls
func (e *testEnv) batchOp(nonce uint64, sponsored bool, calls ...wallet.SubCall) *types.Operation {
	e.t.Helper()

	input, err := wallet.EncodeBatch(calls)
	require.NoError(e.t, err)

	op := &types.Operation{
		Nonce:                nonce,
		From:                 e.account,
		To:                   e.account,
		Value:                big.NewInt(0),
		GasLimit:             testGasLimit,
		GasPerPubdata:        types.DefaultGasPerPubdata,
		MaxFeePerGas:         testMaxFee,
		MaxPriorityFeePerGas: testMaxFee,
		ChainID:              testChainID,
		Input:                input,
	}

	if sponsored {
		e.sponsor(op, minAllowance)
	}

	return op
}

func (e *testEnv) sponsor(op *types.Operation, amount *big.Int) {
	e.t.Helper()

	paymasterInput, err := types.EncodeApprovalBasedFlow(e.token, amount, nil)
	require.NoError(e.t, err)

	op.PaymasterParams = &types.PaymasterParams{
		Paymaster:      e.paymaster,
		PaymasterInput: paymasterInput,
	}
}

func (e *testEnv) sign(op *types.Operation, key *ecdsa.PrivateKey) *types.Operation {
	e.t.Helper()

	signed, err := e.executor.Signer().SignOperation(op, key)
	require.NoError(e.t, err)

	return signed
}
