package jsonrpc

const (
	// DefaultJSONRPCBatchRequestLimit maximum length allowed for json_rpc batch requests
	DefaultJSONRPCBatchRequestLimit uint64 = 20
	// DefaultJSONRPCReceiptsLimit maximum number of receipts returned by aa_getReceiptsBySender
	DefaultJSONRPCReceiptsLimit uint64 = 100
)
