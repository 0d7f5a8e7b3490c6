package operation

import (
	"fmt"

	web3rpc "github.com/umbracle/go-web3/jsonrpc"

	"github.com/notuslabs/notus-aa/helper/hex"
	"github.com/notuslabs/notus-aa/types"
)

// nodeClient wraps the aa namespace calls of a node
type nodeClient struct {
	client *web3rpc.Client
}

func newNodeClient(addr string) (*nodeClient, error) {
	client, err := web3rpc.NewClient(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return &nodeClient{client: client}, nil
}

func (c *nodeClient) Close() error {
	return c.client.Close()
}

func (c *nodeClient) sequenceNumber(addr types.Address) (uint64, error) {
	var out string

	if err := c.client.Call("aa_getSequenceNumber", &out, addr); err != nil {
		return 0, err
	}

	return hex.DecodeUint64(out)
}

func (c *nodeClient) sendRaw(raw []byte) (types.Hash, error) {
	var hash types.Hash

	err := c.client.Call("aa_sendRawOperation", &hash, hex.EncodeToHex(raw))

	return hash, err
}

// receipt returns a nil result for an operation the node never applied
func (c *nodeClient) receipt(hash types.Hash) (*ReceiptResult, error) {
	var out *ReceiptResult

	if err := c.client.Call("aa_getOperationReceipt", &out, hash); err != nil {
		return nil, err
	}

	return out, nil
}
