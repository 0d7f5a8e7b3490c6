package server

import (
	"errors"
	"math/big"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/jsonrpc"
	"github.com/notuslabs/notus-aa/storage"
	"github.com/notuslabs/notus-aa/types"
)

// jsonRPCStore serves the endpoints from the node
type jsonRPCStore struct {
	server *Server

	metrics *jsonrpcStoreMetrics
}

func NewJSONRPCStore(server *Server, metrics *jsonrpcStoreMetrics) jsonrpc.JSONRPCStore {
	if metrics == nil {
		metrics = JSONRPCStoreNilMetrics()
	}

	return &jsonRPCStore{
		server:  server,
		metrics: metrics,
	}
}

// jsonrpc.aaStore interface

func (j *jsonRPCStore) SubmitOperation(op *types.Operation) (*types.Receipt, error) {
	j.metrics.SubmitOperationInc()

	return j.server.SubmitOperation(op)
}

func (j *jsonRPCStore) GetReceipt(hash types.Hash) (*types.Receipt, error) {
	j.metrics.GetReceiptInc()

	receipt, err := j.server.GetReceipt(hash)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, jsonrpc.ErrNotFound
	}

	return receipt, err
}

func (j *jsonRPCStore) GetReceiptsBySender(sender types.Address, from uint64, limit int) ([]*types.Receipt, error) {
	j.metrics.GetReceiptsBySenderInc()

	return j.server.GetReceiptsBySender(sender, from, limit)
}

func (j *jsonRPCStore) GetSequenceNumber(addr types.Address) (uint64, error) {
	j.metrics.GetSequenceNumberInc()

	return j.server.GetSequenceNumber(addr)
}

func (j *jsonRPCStore) ComputeAccountAddress(
	factory types.Address,
	salt types.Hash,
	owner types.Address,
) (types.Address, error) {
	j.metrics.ComputeAccountAddressInc()

	return j.server.ComputeAccountAddress(factory, salt, owner)
}

func (j *jsonRPCStore) Call(from, to types.Address, input []byte) ([]byte, error) {
	j.metrics.CallInc()

	return j.server.Call(from, to, input)
}

func (j *jsonRPCStore) Deployments() *chain.Deployed {
	return j.server.Deployments()
}

// jsonrpc.ethStore interface

func (j *jsonRPCStore) GetBalance(addr types.Address) (*big.Int, error) {
	j.metrics.GetBalanceInc()

	return j.server.GetBalance(addr)
}
