package jsonrpc

import (
	"math/big"

	"github.com/notuslabs/notus-aa/types"
)

type ethStore interface {
	// GetBalance returns the committed native balance
	GetBalance(addr types.Address) (*big.Int, error)
}

// Eth is the subset of the eth namespace wallets query on connect
type Eth struct {
	store   ethStore
	chainID uint64

	metrics *Metrics
}

// ChainId returns the chain id of the ledger
func (e *Eth) ChainId() (interface{}, error) {
	e.metrics.EthAPICounterInc(EthChainIDLabel)

	return argUintPtr(e.chainID), nil
}

// GetBalance returns the native balance of addr
func (e *Eth) GetBalance(addr types.Address) (interface{}, error) {
	e.metrics.EthAPICounterInc(EthGetBalanceLabel)

	balance, err := e.store.GetBalance(addr)
	if err != nil {
		return nil, err
	}

	return argBigPtr(balance), nil
}
