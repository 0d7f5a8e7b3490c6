package server

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/contracts/factory"
	"github.com/notuslabs/notus-aa/types"
)

var ErrNotFactory = errors.New("address is not an account factory")

// SubmitOperation applies an operation on the committed ledger. A rejected
// operation returns a *state.OperationError and leaves nothing behind.
func (s *Server) SubmitOperation(op *types.Operation) (*types.Receipt, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed.Load() {
		return nil, ErrServerClosed
	}

	t := s.executor.BeginTxn()

	receipt, err := s.executor.Apply(t, op)
	if err != nil {
		return nil, err
	}

	// the state change and its receipt land in one write or not at all
	batch := s.storage.NewBatch()

	stored, err := s.storage.StageOperation(batch, op, receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to store receipt %s: %w", receipt.OperationHash, err)
	}

	if err := t.CommitWith(batch); err != nil {
		return nil, fmt.Errorf("failed to commit operation %s: %w", receipt.OperationHash, err)
	}

	stored()

	s.logger.Info("operation applied",
		"hash", receipt.OperationHash,
		"from", receipt.From,
		"nonce", receipt.Nonce,
		"success", receipt.Succeeded(),
	)

	return receipt, nil
}

// GetReceipt returns storage.ErrNotFound for an operation never applied
func (s *Server) GetReceipt(hash types.Hash) (*types.Receipt, error) {
	return s.storage.ReadReceipt(hash)
}

func (s *Server) GetOperation(hash types.Hash) (*types.Operation, error) {
	return s.storage.ReadOperation(hash)
}

// GetReceiptsBySender returns the receipts of sender in nonce order
func (s *Server) GetReceiptsBySender(sender types.Address, from uint64, limit int) ([]*types.Receipt, error) {
	return s.storage.ReadReceiptsBySender(sender, from, limit)
}

// GetSequenceNumber returns the nonce the next operation of addr must carry
func (s *Server) GetSequenceNumber(addr types.Address) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.state.GetNonce(addr)
}

func (s *Server) GetBalance(addr types.Address) (*big.Int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.state.GetBalance(addr)
}

// ComputeAccountAddress returns where the factory creates the account of owner with salt
func (s *Server) ComputeAccountAddress(factoryAddr types.Address, salt types.Hash, owner types.Address) (types.Address, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	t := s.executor.BeginTxn()

	if t.GetCodeHash(factoryAddr) != s.hashes.Factory {
		return types.ZeroAddress, fmt.Errorf("%w: %s", ErrNotFactory, factoryAddr)
	}

	return factory.ComputeAddress(factoryAddr, factory.BytecodeHash(t, factoryAddr), salt, owner), nil
}

// Call runs a call on the committed ledger and discards its effects
func (s *Server) Call(from, to types.Address, input []byte) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.executor.Call(s.executor.BeginTxn(), from, to, nil, input)
}

// Deployments returns the addresses of the genesis contracts
func (s *Server) Deployments() *chain.Deployed {
	return s.deployed
}

// OperationCount is the number of operations applied since genesis
func (s *Server) OperationCount() uint64 {
	return s.storage.OperationCount()
}
