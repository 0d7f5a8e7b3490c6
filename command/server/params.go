package server

import (
	"net"

	"github.com/hashicorp/go-hclog"

	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/server"
)

const (
	configFlag                   = "config"
	genesisPathFlag              = "chain"
	dataDirFlag                  = "data-dir"
	memoryFlag                   = "memory"
	leveldbCacheFlag             = "leveldb.cache-size"
	leveldbHandlesFlag           = "leveldb.handles"
	leveldbBloomKeyBitsFlag      = "leveldb.bloom-bits"
	leveldbTableSizeFlag         = "leveldb.table-size"
	leveldbTotalTableSizeFlag    = "leveldb.total-table-size"
	leveldbNoSyncFlag            = "leveldb.nosync"
	jsonRPCAddressFlag           = "jsonrpc"
	disableJSONRPCFlag           = "disable-jsonrpc"
	prometheusAddressFlag        = "prometheus"
	jaegerURLFlag                = "jaeger-url"
	restoreFlag                  = "restore"
	corsOriginFlag               = "access-control-allow-origins"
	logFileLocationFlag          = "log-to"
	jsonRPCBatchRequestLimitFlag = "json-rpc-batch-request-limit"
	jsonRPCReceiptsLimitFlag     = "json-rpc-receipts-limit"
	jsonNamespacesFlag           = "json-namespaces"
	enableWSFlag                 = "enable-ws"
	enablePprofFlag              = "enable-pprof"
	receiptCacheSizeFlag         = "receipt-cache-size"
)

var (
	params = &serverParams{
		rawConfig: DefaultConfig(),
	}
)

type serverParams struct {
	rawConfig  *Config
	configPath string

	inMemory bool

	prometheusAddress *net.TCPAddr
	jsonRPCAddress    *net.TCPAddr

	corsAllowedOrigins []string

	genesisConfig *chain.Chain

	logFileLocation string
}

func (p *serverParams) isLogFileLocationSet() bool {
	return p.rawConfig.LogFilePath != ""
}

func (p *serverParams) isPrometheusAddressSet() bool {
	return p.rawConfig.Telemetry.PrometheusAddr != ""
}

func (p *serverParams) getRestoreFilePath() *string {
	if p.rawConfig.RestoreFile != "" {
		return &p.rawConfig.RestoreFile
	}

	return nil
}

func (p *serverParams) getDataDir() string {
	if p.inMemory {
		return ""
	}

	return p.rawConfig.DataDir
}

func (p *serverParams) generateJSONRPCConfig() *server.JSONRPC {
	if p.rawConfig.DisableJSONRPC {
		return nil
	}

	return &server.JSONRPC{
		JSONRPCAddr:              p.jsonRPCAddress,
		AccessControlAllowOrigin: p.corsAllowedOrigins,
		BatchLengthLimit:         p.rawConfig.JSONRPCBatchRequestLimit,
		ReceiptsLimit:            p.rawConfig.JSONRPCReceiptsLimit,
		JSONNamespace:            p.rawConfig.JSONNamespaces,
		EnableWS:                 p.rawConfig.EnableWS,
		EnablePprof:              p.rawConfig.EnablePprof,
	}
}

func (p *serverParams) generateConfig() *server.Config {
	leveldb := p.rawConfig.Leveldb

	return &server.Config{
		Chain:   p.genesisConfig,
		JSONRPC: p.generateJSONRPCConfig(),
		Telemetry: &server.Telemetry{
			PrometheusAddr: p.prometheusAddress,
			JaegerURL:      p.rawConfig.Telemetry.JaegerURL,
		},
		DataDir:     p.getDataDir(),
		RestoreFile: p.getRestoreFilePath(),
		LeveldbOptions: &server.LeveldbOptions{
			CacheSize:           leveldb.CacheSize,
			Handles:             leveldb.Handles,
			BloomKeyBits:        leveldb.BloomKeyBits,
			CompactionTableSize: leveldb.CompactionTableSize,
			CompactionTotalSize: leveldb.CompactionTotalSize,
			NoSync:              leveldb.NoSync,
		},
		ReceiptCacheSize: p.rawConfig.ReceiptCacheSize,
		LogLevel:         hclog.LevelFromString(p.rawConfig.LogLevel),
		LogFilePath:      p.logFileLocation,
	}
}
