package server

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl"

	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/jsonrpc"
	"github.com/notuslabs/notus-aa/server"
)

// Config defines the server configuration params
type Config struct {
	GenesisPath              string     `json:"chain_config" hcl:"chain_config"`
	DataDir                  string     `json:"data_dir" hcl:"data_dir"`
	RestoreFile              string     `json:"restore_file" hcl:"restore_file"`
	Telemetry                *Telemetry `json:"telemetry" hcl:"telemetry"`
	Headers                  *Headers   `json:"headers" hcl:"headers"`
	Leveldb                  *Leveldb   `json:"leveldb" hcl:"leveldb"`
	JSONRPCAddr              string     `json:"jsonrpc_addr" hcl:"jsonrpc_addr"`
	DisableJSONRPC           bool       `json:"disable_jsonrpc" hcl:"disable_jsonrpc"`
	JSONRPCBatchRequestLimit uint64     `json:"json_rpc_batch_request_limit" hcl:"json_rpc_batch_request_limit"`
	JSONRPCReceiptsLimit     uint64     `json:"json_rpc_receipts_limit" hcl:"json_rpc_receipts_limit"`
	JSONNamespaces           []string   `json:"json_namespaces" hcl:"json_namespaces"`
	EnableWS                 bool       `json:"enable_ws" hcl:"enable_ws"`
	EnablePprof              bool       `json:"enable_pprof" hcl:"enable_pprof"`
	ReceiptCacheSize         int        `json:"receipt_cache_size" hcl:"receipt_cache_size"`
	LogLevel                 string     `json:"log_level" hcl:"log_level"`
	LogFilePath              string     `json:"log_to" hcl:"log_to"`
}

// Telemetry holds the config details for metric and tracing services
type Telemetry struct {
	PrometheusAddr string `json:"prometheus_addr" hcl:"prometheus_addr"`
	JaegerURL      string `json:"jaeger_url" hcl:"jaeger_url"`
}

// Headers defines the HTTP response headers required to enable CORS.
type Headers struct {
	AccessControlAllowOrigins []string `json:"access_control_allow_origins" hcl:"access_control_allow_origins"`
}

// Leveldb tunes the ledger database
type Leveldb struct {
	CacheSize           int  `json:"cache_size" hcl:"cache_size"`
	Handles             int  `json:"handles" hcl:"handles"`
	BloomKeyBits        int  `json:"bloom_bits" hcl:"bloom_bits"`
	CompactionTableSize int  `json:"table_size" hcl:"table_size"`
	CompactionTotalSize int  `json:"total_table_size" hcl:"total_table_size"`
	NoSync              bool `json:"nosync" hcl:"nosync"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		GenesisPath: command.DefaultChainName,
		DataDir:     command.DefaultDataDir,
		Telemetry:   &Telemetry{},
		Headers: &Headers{
			AccessControlAllowOrigins: []string{"*"},
		},
		Leveldb: &Leveldb{
			CacheSize:           1024,
			Handles:             512,
			BloomKeyBits:        2048,
			CompactionTableSize: 4,
			CompactionTotalSize: 40,
		},
		JSONRPCAddr:              fmt.Sprintf("%s:%d", "0.0.0.0", server.DefaultJSONRPCPort),
		JSONRPCBatchRequestLimit: jsonrpc.DefaultJSONRPCBatchRequestLimit,
		JSONRPCReceiptsLimit:     jsonrpc.DefaultJSONRPCReceiptsLimit,
		ReceiptCacheSize:         server.DefaultReceiptCacheSize,
		LogLevel:                 "INFO",
	}
}

// readConfigFile reads the config file from the specified path, builds a Config object
// and returns it.
//
// Supported file types: .json, .hcl
func readConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = hcl.Unmarshal
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = json.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl nor json", path)
	}

	config := DefaultConfig()

	if err := unmarshalFunc(data, config); err != nil {
		return nil, err
	}

	return config, nil
}
