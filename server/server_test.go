package server

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"net"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/hashicorp/go-hclog"
	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/contracts"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/contracts/factory"
	"github.com/notuslabs/notus-aa/contracts/wallet"
	"github.com/notuslabs/notus-aa/crypto"
	"github.com/notuslabs/notus-aa/helper/hex"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/helper/rawdb"
	"github.com/notuslabs/notus-aa/state"
	"github.com/notuslabs/notus-aa/storage"
	"github.com/notuslabs/notus-aa/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	web3rpc "github.com/umbracle/go-web3/jsonrpc"
	"go.uber.org/atomic"
)

var (
	oneEther     = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	minAllowance = big.NewInt(1000000)
	testSalt     = types.StringToHash("0x01")
)

// testLedger is the dev chain with a funded owner key and the address its
// account will be created at
type testLedger struct {
	chain    *chain.Chain
	deployed *chain.Deployed
	ownerKey *ecdsa.PrivateKey
	owner    types.Address
	account  types.Address
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()

	key, err := crypto.GenerateECDSAKey()
	require.NoError(t, err)

	_, hashes, err := contracts.NewRegistry()
	require.NoError(t, err)

	l := &testLedger{
		chain:    chain.DevChain(),
		ownerKey: key,
		owner:    crypto.PubKeyToAddress(&key.PublicKey),
	}

	l.deployed = l.chain.Genesis.Addresses(hashes)
	l.account = factory.ComputeAddress(l.deployed.Factory, l.deployed.AccountBytecodeHash, testSalt, l.owner)

	l.chain.Genesis.Alloc[l.owner] = &chain.GenesisAccount{Balance: (*math.HexOrDecimal256)(oneEther)}
	l.chain.Genesis.Token.Mint = map[types.Address]*math.HexOrDecimal256{
		l.account: (*math.HexOrDecimal256)(big.NewInt(5000000)),
	}

	return l
}

func (l *testLedger) op(t *testing.T, from, to types.Address, nonce uint64, input []byte) *types.Operation {
	t.Helper()

	return &types.Operation{
		Nonce:                nonce,
		From:                 from,
		To:                   to,
		Value:                big.NewInt(0),
		GasLimit:             10000000,
		MaxFeePerGas:         big.NewInt(1000000000),
		MaxPriorityFeePerGas: big.NewInt(1000000000),
		ChainID:              chain.DevChainID,
		Input:                input,
		GasPerPubdata:        types.DefaultGasPerPubdata,
	}
}

func (l *testLedger) sign(t *testing.T, op *types.Operation) *types.Operation {
	t.Helper()

	signed, err := crypto.NewEIP712Signer(chain.DevChainID).SignOperation(op, l.ownerKey)
	require.NoError(t, err)

	return signed
}

// createAccountOp is sent by the owner key itself, which pays its own fee
func (l *testLedger) createAccountOp(t *testing.T) *types.Operation {
	t.Helper()

	input, err := abis.FactoryABI.Pack("createAccount", [32]byte(testSalt), common.Address(l.owner))
	require.NoError(t, err)

	return l.sign(t, l.op(t, l.owner, l.deployed.Factory, 0, input))
}

// mintBatchOp runs two mints from the account and is paid for by the paymaster
func (l *testLedger) mintBatchOp(t *testing.T, nonce uint64) *types.Operation {
	t.Helper()

	mint, err := abis.TokenABI.Pack("mint", common.Address(l.owner), oneEther)
	require.NoError(t, err)

	input, err := wallet.EncodeBatch([]wallet.SubCall{
		{Target: l.deployed.Token, Data: mint},
		{Target: l.deployed.Token, Data: mint},
	})
	require.NoError(t, err)

	paymasterInput, err := types.EncodeApprovalBasedFlow(l.deployed.Token, minAllowance, nil)
	require.NoError(t, err)

	op := l.op(t, l.account, l.account, nonce, input)
	op.PaymasterParams = &types.PaymasterParams{
		Paymaster:      l.deployed.Paymaster,
		PaymasterInput: paymasterInput,
	}

	return l.sign(t, op)
}

var errBatchWrite = errors.New("batch write failed")

// flakyDB fails every batch write while failing is set
type flakyDB struct {
	kvdb.KVBatchStorage

	failing *atomic.Bool
}

func newFlakyDB() *flakyDB {
	return &flakyDB{
		KVBatchStorage: kvdb.NewMemoryStorage(),
		failing:        atomic.NewBool(false),
	}
}

func (d *flakyDB) NewBatch() kvdb.Batch {
	return &flakyBatch{Batch: d.KVBatchStorage.NewBatch(), failing: d.failing}
}

type flakyBatch struct {
	kvdb.Batch

	failing *atomic.Bool
}

func (b *flakyBatch) Write() error {
	if b.failing.Load() {
		return errBatchWrite
	}

	return b.Batch.Write()
}

func newTestServer(t *testing.T, config *Config) *Server {
	t.Helper()

	srv, err := newServer(hclog.NewNullLogger(), config)
	require.NoError(t, err)

	t.Cleanup(srv.Close)

	return srv
}

func tokenBalance(t *testing.T, srv *Server, addr types.Address) *big.Int {
	t.Helper()

	input, err := abis.TokenABI.Pack("balanceOf", common.Address(addr))
	require.NoError(t, err)

	ret, err := srv.Call(types.ZeroAddress, srv.Deployments().Token, input)
	require.NoError(t, err)

	outputs, err := abis.TokenABI.Unpack("balanceOf", ret)
	require.NoError(t, err)

	//nolint:forcetypeassert
	return outputs[0].(*big.Int)
}

func TestServer_SponsoredFlow(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	srv := newTestServer(t, &Config{Chain: l.chain})

	assert.Equal(t, l.deployed, srv.Deployments())

	created, err := srv.SubmitOperation(l.createAccountOp(t))
	require.NoError(t, err)
	require.True(t, created.Succeeded(), created.Reason)

	addr, err := srv.ComputeAccountAddress(l.deployed.Factory, testSalt, l.owner)
	require.NoError(t, err)
	assert.Equal(t, l.account, addr)

	op := l.mintBatchOp(t, 0)

	receipt, err := srv.SubmitOperation(op)
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), receipt.Reason)

	assert.Equal(t, l.deployed.Paymaster, receipt.Paymaster)
	assert.Equal(t, 0, minAllowance.Cmp(receipt.TokenPulled))
	assert.Equal(t, op.MaxFee().String(), receipt.FeeCharged.String())

	assert.Equal(t, new(big.Int).Mul(oneEther, big.NewInt(2)).String(), tokenBalance(t, srv, l.owner).String())
	assert.Equal(t, "4000000", tokenBalance(t, srv, l.account).String())

	nonce, err := srv.GetSequenceNumber(l.account)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	stored, err := srv.GetReceipt(op.Hash())
	require.NoError(t, err)
	assert.Equal(t, receipt.OperationHash, stored.OperationHash)

	storedOp, err := srv.GetOperation(op.Hash())
	require.NoError(t, err)
	assert.Equal(t, op.Hash(), storedOp.Hash())

	bySender, err := srv.GetReceiptsBySender(l.account, 0, 0)
	require.NoError(t, err)
	require.Len(t, bySender, 1)
	assert.Equal(t, op.Hash(), bySender[0].OperationHash)

	assert.Equal(t, uint64(2), srv.OperationCount())
}

func TestServer_RejectedLeavesNoTrace(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	srv := newTestServer(t, &Config{Chain: l.chain})

	_, err := srv.SubmitOperation(l.createAccountOp(t))
	require.NoError(t, err)

	op := l.mintBatchOp(t, 0)

	_, err = srv.SubmitOperation(op)
	require.NoError(t, err)

	paymasterBalance, err := srv.GetBalance(l.deployed.Paymaster)
	require.NoError(t, err)

	_, err = srv.SubmitOperation(op)

	var opErr *state.OperationError

	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, state.ReplayOrOrderingFailure, opErr.Kind)

	after, err := srv.GetBalance(l.deployed.Paymaster)
	require.NoError(t, err)
	assert.Equal(t, paymasterBalance.String(), after.String())

	assert.Equal(t, uint64(2), srv.OperationCount())

	_, err = srv.GetReceipt(types.StringToHash("0xdead"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestServer_FailedCommitLeavesNoTrace(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	db := newFlakyDB()

	srv, err := newServerWithDB(hclog.NewNullLogger(), &Config{Chain: l.chain}, db)
	require.NoError(t, err)

	t.Cleanup(srv.Close)

	op := l.createAccountOp(t)

	db.failing.Store(true)

	_, err = srv.SubmitOperation(op)
	require.ErrorIs(t, err, errBatchWrite)

	nonce, err := srv.GetSequenceNumber(l.owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)

	_, err = srv.GetReceipt(op.Hash())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, uint64(0), srv.OperationCount())

	// the same operation goes through once the store recovers
	db.failing.Store(false)

	receipt, err := srv.SubmitOperation(op)
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())
	assert.Equal(t, uint64(1), srv.OperationCount())

	nonce, err = srv.GetSequenceNumber(l.owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestServer_FailedGenesisCommit(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	db := newFlakyDB()
	db.failing.Store(true)

	_, err := newServerWithDB(hclog.NewNullLogger(), &Config{Chain: l.chain}, db)
	require.ErrorIs(t, err, errBatchWrite)

	_, ok := rawdb.ReadGenesisHash(db)
	assert.False(t, ok)

	// neither the marker nor the genesis state was written, so a retry starts clean
	db.failing.Store(false)

	srv, err := newServerWithDB(hclog.NewNullLogger(), &Config{Chain: l.chain}, db)
	require.NoError(t, err)

	t.Cleanup(srv.Close)

	assert.Equal(t, l.deployed, srv.Deployments())
}

func TestServer_ComputeAccountAddressNotFactory(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	srv := newTestServer(t, &Config{Chain: l.chain})

	_, err := srv.ComputeAccountAddress(l.deployed.Token, testSalt, l.owner)
	assert.ErrorIs(t, err, ErrNotFactory)
}

func TestServer_Restart(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	dataDir := t.TempDir()

	srv, err := newServer(hclog.NewNullLogger(), &Config{Chain: l.chain, DataDir: dataDir})
	require.NoError(t, err)

	created, err := srv.SubmitOperation(l.createAccountOp(t))
	require.NoError(t, err)

	srv.Close()

	_, err = srv.SubmitOperation(l.mintBatchOp(t, 0))
	assert.ErrorIs(t, err, ErrServerClosed)

	reopened := newTestServer(t, &Config{Chain: l.chain, DataDir: dataDir})

	assert.Equal(t, l.deployed, reopened.Deployments())

	nonce, err := reopened.GetSequenceNumber(l.owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	receipt, err := reopened.GetReceipt(created.OperationHash)
	require.NoError(t, err)
	assert.True(t, receipt.Succeeded())

	// the ledger carries on where it stopped
	sponsored, err := reopened.SubmitOperation(l.mintBatchOp(t, 0))
	require.NoError(t, err)
	assert.True(t, sponsored.Succeeded(), sponsored.Reason)
}

func TestServer_GenesisMismatch(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	dataDir := t.TempDir()

	srv, err := newServer(hclog.NewNullLogger(), &Config{Chain: l.chain, DataDir: dataDir})
	require.NoError(t, err)
	srv.Close()

	other := newTestLedger(t)

	_, err = newServer(hclog.NewNullLogger(), &Config{Chain: other.chain, DataDir: dataDir})
	assert.ErrorIs(t, err, ErrGenesisMismatch)
}

func TestServer_JSONRPC(t *testing.T) {
	t.Parallel()

	l := newTestLedger(t)
	srv := newTestServer(t, &Config{
		Chain: l.chain,
		JSONRPC: &JSONRPC{
			JSONRPCAddr:      &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0},
			BatchLengthLimit: 20,
			ReceiptsLimit:    100,
		},
	})

	client, err := web3rpc.NewClient("http://" + srv.JSONRPCAddr().String())
	require.NoError(t, err)

	defer client.Close()

	var chainID string

	require.NoError(t, client.Call("eth_chainId", &chainID))
	assert.Equal(t, "0x10e", chainID)

	var deployed chain.Deployed

	require.NoError(t, client.Call("aa_getDeployments", &deployed))
	assert.Equal(t, *l.deployed, deployed)

	op := l.createAccountOp(t)

	var hash types.Hash

	require.NoError(t, client.Call("aa_sendRawOperation", &hash, hex.EncodeToHex(op.MarshalRLP())))
	assert.Equal(t, op.Hash(), hash)

	var receipt map[string]interface{}

	require.NoError(t, client.Call("aa_getOperationReceipt", &receipt, hash))
	assert.Equal(t, "0x1", receipt["status"])

	var missing map[string]interface{}

	require.NoError(t, client.Call("aa_getOperationReceipt", &missing, types.StringToHash("0xdead")))
	assert.Nil(t, missing)

	// a replay is refused with the failure kind attached
	err = client.Call("aa_sendRawOperation", &hash, hex.EncodeToHex(op.MarshalRLP()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(state.ReplayOrOrderingFailure))

	var account types.Address

	require.NoError(t, client.Call("aa_computeAccountAddress", &account, l.deployed.Factory, testSalt, l.owner))
	assert.Equal(t, l.account, account)
}
