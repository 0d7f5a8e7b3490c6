package server

import (
	"net"

	"github.com/hashicorp/go-hclog"

	"github.com/notuslabs/notus-aa/chain"
)

const (
	DefaultJSONRPCPort    int = 8545
	DefaultPrometheusPort int = 5001

	DefaultReceiptCacheSize = 1024
)

// Config is used to parametrize the node
type Config struct {
	Chain *chain.Chain

	// JSONRPC is not served when nil
	JSONRPC   *JSONRPC
	Telemetry *Telemetry

	// DataDir keeps the ledger in memory when empty
	DataDir     string
	RestoreFile *string

	LeveldbOptions *LeveldbOptions

	ReceiptCacheSize int

	LogLevel    hclog.Level
	LogFilePath string
}

// LeveldbOptions holds the leveldb options
type LeveldbOptions struct {
	CacheSize           int
	Handles             int
	BloomKeyBits        int
	CompactionTableSize int
	CompactionTotalSize int
	NoSync              bool
}

// Telemetry holds the config details for metric and tracing services
type Telemetry struct {
	PrometheusAddr *net.TCPAddr
	JaegerURL      string
}

// JSONRPC holds the config details for the JSON-RPC server
type JSONRPC struct {
	JSONRPCAddr              *net.TCPAddr
	AccessControlAllowOrigin []string
	BatchLengthLimit         uint64
	ReceiptsLimit            uint64
	JSONNamespace            []string
	EnableWS                 bool
	EnablePprof              bool
}
