package jsonrpc

import (
	"fmt"

	"github.com/notuslabs/notus-aa/helper/keccak"
	"github.com/notuslabs/notus-aa/versioning"
)

var _clientVersionTemplate = "notus-aa [chain-id: %d] [version: %s]"

// Web3 serves the web3 namespace
type Web3 struct {
	chainID uint64
	metrics *Metrics
}

// ClientVersion reports the node name with its chain id and build version
func (w *Web3) ClientVersion() (interface{}, error) {
	w.metrics.Web3APICounterInc(Web3ClientVersionLabel)

	return fmt.Sprintf(_clientVersionTemplate, w.chainID, versioning.Version), nil
}

// Sha3 hashes the payload with legacy Keccak-256
func (w *Web3) Sha3(data argBytes) (interface{}, error) {
	w.metrics.Web3APICounterInc(Web3Sha3Label)

	return argBytes(keccak.Keccak256(nil, data)), nil
}
