package jsonrpc

import (
	"encoding/json"
	"math/big"
	"sync"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/contracts/factory"
	"github.com/notuslabs/notus-aa/types"
)

var mockAccountBytecodeHash = types.StringToHash("0x0100000100000000000000000000000000000000000000000000000000000001")

type mockCall struct {
	from, to types.Address
	input    []byte
}

// mockStore is an in memory store of receipts where every operation is applied
type mockStore struct {
	lock sync.Mutex

	receipts  map[types.Hash]*types.Receipt
	nonces    map[types.Address]uint64
	balances  map[types.Address]*big.Int
	submitErr error
	calls     []mockCall
}

func newMockStore() *mockStore {
	return &mockStore{
		receipts: map[types.Hash]*types.Receipt{},
		nonces:   map[types.Address]uint64{},
		balances: map[types.Address]*big.Int{},
	}
}

func (m *mockStore) SubmitOperation(op *types.Operation) (*types.Receipt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.submitErr != nil {
		return nil, m.submitErr
	}

	receipt := &types.Receipt{
		OperationHash: op.Hash(),
		From:          op.From,
		Nonce:         op.Nonce,
		Paymaster:     op.Paymaster(),
		Status:        types.ReceiptSuccess,
		FeeCharged:    op.MaxFee(),
	}

	m.receipts[receipt.OperationHash] = receipt
	m.nonces[op.From] = op.Nonce + 1

	return receipt, nil
}

func (m *mockStore) GetReceipt(hash types.Hash) (*types.Receipt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	receipt, ok := m.receipts[hash]
	if !ok {
		return nil, ErrNotFound
	}

	return receipt, nil
}

func (m *mockStore) GetReceiptsBySender(sender types.Address, from uint64, limit int) ([]*types.Receipt, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	res := []*types.Receipt{}

	for nonce := from; nonce < m.nonces[sender]; nonce++ {
		for _, r := range m.receipts {
			if r.From == sender && r.Nonce == nonce {
				res = append(res, r)
			}
		}

		if limit > 0 && len(res) >= limit {
			break
		}
	}

	return res, nil
}

func (m *mockStore) GetSequenceNumber(addr types.Address) (uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.nonces[addr], nil
}

func (m *mockStore) ComputeAccountAddress(factoryAddr types.Address, salt types.Hash, owner types.Address) (types.Address, error) {
	return factory.ComputeAddress(factoryAddr, mockAccountBytecodeHash, salt, owner), nil
}

func (m *mockStore) Call(from, to types.Address, input []byte) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.calls = append(m.calls, mockCall{from: from, to: to, input: input})

	// echoes the input back
	return input, nil
}

func (m *mockStore) Deployments() *chain.Deployed {
	return &chain.Deployed{
		Token:               types.StringToAddress("0x0a"),
		Factory:             types.StringToAddress("0x0b"),
		Paymaster:           types.StringToAddress("0x0c"),
		AccountBytecodeHash: mockAccountBytecodeHash,
	}
}

func (m *mockStore) GetBalance(addr types.Address) (*big.Int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if balance, ok := m.balances[addr]; ok {
		return balance, nil
	}

	return big.NewInt(0), nil
}

func expectJSONResult(data []byte, v interface{}) error {
	var resp SuccessResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	if resp.Error != nil {
		return resp.Error
	}

	return json.Unmarshal(resp.Result, v)
}

func expectJSONError(data []byte) (*ObjectError, error) {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	return resp.Error, nil
}

func expectBatchJSONResult(data []byte, v interface{}) error {
	var resp []SuccessResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	results := make([]json.RawMessage, 0, len(resp))

	for _, r := range resp {
		if r.Error != nil {
			results = append(results, json.RawMessage("null"))
		} else {
			results = append(results, r.Result)
		}
	}

	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}

	return json.Unmarshal(raw, v)
}
