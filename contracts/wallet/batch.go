package wallet

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/notuslabs/notus-aa/contracts/abis"
	"github.com/notuslabs/notus-aa/state/runtime"
	"github.com/notuslabs/notus-aa/types"
)

// SubCall is one entry of a batch
type SubCall struct {
	Target types.Address
	Data   []byte
}

// BatchSelector is the selector of executeBatchTransaction(bytes[],address[])
var BatchSelector = abis.WalletABI.Methods["executeBatchTransaction"].ID

// IsBatch returns true if input calls executeBatchTransaction
func IsBatch(input []byte) bool {
	return len(input) >= 4 && bytes.Equal(input[:4], BatchSelector)
}

// EncodeBatch encodes the sub-calls as two parallel arrays of payloads and targets
func EncodeBatch(calls []SubCall) ([]byte, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("%w: empty batch", runtime.ErrMalformedBatch)
	}

	datas := make([][]byte, 0, len(calls))
	callers := make([]common.Address, 0, len(calls))

	for _, c := range calls {
		datas = append(datas, c.Data)
		callers = append(callers, common.Address(c.Target))
	}

	return abis.WalletABI.Pack("executeBatchTransaction", datas, callers)
}

// DecodeBatch decodes and checks a batch call
func DecodeBatch(input []byte) ([]SubCall, error) {
	if !IsBatch(input) {
		return nil, fmt.Errorf("%w: not a batch call", runtime.ErrMalformedBatch)
	}

	_, args, err := abis.DecodeCall(abis.WalletABI, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", runtime.ErrMalformedBatch, err)
	}

	datas, ok := args[0].([][]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected payload type %T", runtime.ErrMalformedBatch, args[0])
	}

	callers, ok := args[1].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected target type %T", runtime.ErrMalformedBatch, args[1])
	}

	if len(datas) != len(callers) {
		return nil, fmt.Errorf("%w: %d payloads for %d targets", runtime.ErrMalformedBatch, len(datas), len(callers))
	}

	if len(datas) == 0 {
		return nil, fmt.Errorf("%w: empty batch", runtime.ErrMalformedBatch)
	}

	calls := make([]SubCall, 0, len(datas))
	for i := range datas {
		calls = append(calls, SubCall{Target: types.Address(callers[i]), Data: datas[i]})
	}

	return calls, nil
}
