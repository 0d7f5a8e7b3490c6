package server

import (
	"github.com/spf13/cobra"

	"github.com/notuslabs/notus-aa/command"
	"github.com/notuslabs/notus-aa/command/helper"
	"github.com/notuslabs/notus-aa/server"
)

func GetCommand() *cobra.Command {
	serverCmd := &cobra.Command{
		Use:     "server",
		Short:   "Starts the ledger node and serves the account abstraction JSON-RPC API",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	setFlags(serverCmd)

	return serverCmd
}

func setFlags(cmd *cobra.Command) {
	defaultConfig := DefaultConfig()

	cmd.Flags().StringVar(
		&params.rawConfig.LogLevel,
		command.LogLevelFlag,
		defaultConfig.LogLevel,
		"the log level for console output",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.GenesisPath,
		genesisPathFlag,
		defaultConfig.GenesisPath,
		"the preset name or genesis file the ledger is started from",
	)

	cmd.Flags().StringVar(
		&params.configPath,
		configFlag,
		"",
		"the path to the CLI config. Supports .json and .hcl",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.DataDir,
		dataDirFlag,
		defaultConfig.DataDir,
		"the data directory the ledger is stored in",
	)

	cmd.Flags().BoolVar(
		&params.inMemory,
		memoryFlag,
		false,
		"keep the ledger in memory, it is lost on shutdown",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.JSONRPCAddr,
		jsonRPCAddressFlag,
		defaultConfig.JSONRPCAddr,
		"the JSON-RPC interface (address:port). If only port is defined (:port) it will bind to 0.0.0.0:port",
	)

	cmd.Flags().BoolVar(
		&params.rawConfig.DisableJSONRPC,
		disableJSONRPCFlag,
		false,
		"do not serve the JSON-RPC API",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.Telemetry.PrometheusAddr,
		prometheusAddressFlag,
		"",
		"the address and port for the prometheus instrumentation service (address:port). "+
			"If only port is defined (:port) it will bind to 0.0.0.0:port",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.Telemetry.JaegerURL,
		jaegerURLFlag,
		"",
		"the jaeger collector endpoint traces are exported to",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.RestoreFile,
		restoreFlag,
		"",
		"the path to the ledger archive to restore on initialization",
	)

	cmd.Flags().StringArrayVar(
		&params.corsAllowedOrigins,
		corsOriginFlag,
		nil,
		"the CORS header indicating whether any JSON-RPC response can be shared with the specified origin",
	)

	cmd.Flags().StringVar(
		&params.rawConfig.LogFilePath,
		logFileLocationFlag,
		defaultConfig.LogFilePath,
		"write all logs to the file at specified location instead of writing them to console",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.JSONRPCBatchRequestLimit,
		jsonRPCBatchRequestLimitFlag,
		defaultConfig.JSONRPCBatchRequestLimit,
		"the max length to be considered when handling json-rpc batch requests",
	)

	cmd.Flags().Uint64Var(
		&params.rawConfig.JSONRPCReceiptsLimit,
		jsonRPCReceiptsLimitFlag,
		defaultConfig.JSONRPCReceiptsLimit,
		"the max number of receipts returned by aa_getReceiptsBySender",
	)

	cmd.Flags().StringSliceVar(
		&params.rawConfig.JSONNamespaces,
		jsonNamespacesFlag,
		nil,
		"the json-rpc namespaces to serve (default aa,eth,web3)",
	)

	cmd.Flags().BoolVar(
		&params.rawConfig.EnableWS,
		enableWSFlag,
		false,
		"serve json-rpc over websocket as well",
	)

	cmd.Flags().BoolVar(
		&params.rawConfig.EnablePprof,
		enablePprofFlag,
		false,
		"serve the pprof handlers on the json-rpc listener",
	)

	cmd.Flags().IntVar(
		&params.rawConfig.ReceiptCacheSize,
		receiptCacheSizeFlag,
		defaultConfig.ReceiptCacheSize,
		"the number of receipts kept in memory",
	)

	setLeveldbFlags(cmd, defaultConfig.Leveldb)
}

func setLeveldbFlags(cmd *cobra.Command, defaults *Leveldb) {
	cmd.Flags().IntVar(
		&params.rawConfig.Leveldb.CacheSize,
		leveldbCacheFlag,
		defaults.CacheSize,
		"the leveldb cache size in MB",
	)

	cmd.Flags().IntVar(
		&params.rawConfig.Leveldb.Handles,
		leveldbHandlesFlag,
		defaults.Handles,
		"the number of open files leveldb may keep",
	)

	cmd.Flags().IntVar(
		&params.rawConfig.Leveldb.BloomKeyBits,
		leveldbBloomKeyBitsFlag,
		defaults.BloomKeyBits,
		"the bits per key of the leveldb bloom filter",
	)

	cmd.Flags().IntVar(
		&params.rawConfig.Leveldb.CompactionTableSize,
		leveldbTableSizeFlag,
		defaults.CompactionTableSize,
		"the leveldb compaction table size in MB",
	)

	cmd.Flags().IntVar(
		&params.rawConfig.Leveldb.CompactionTotalSize,
		leveldbTotalTableSizeFlag,
		defaults.CompactionTotalSize,
		"the leveldb compaction total table size in MB",
	)

	cmd.Flags().BoolVar(
		&params.rawConfig.Leveldb.NoSync,
		leveldbNoSyncFlag,
		false,
		"do not fsync leveldb writes",
	)
}

func runPreRun(cmd *cobra.Command, _ []string) error {
	// Config file settings take precedence over flags
	if isConfigFileSpecified(cmd) {
		if err := params.initConfigFromFile(); err != nil {
			return err
		}
	}

	return params.initRawParams()
}

func isConfigFileSpecified(cmd *cobra.Command) bool {
	return cmd.Flags().Changed(configFlag)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)

	if err := runServerLoop(params.generateConfig(), outputter); err != nil {
		outputter.SetError(err)
		outputter.WriteOutput()

		return
	}
}

func runServerLoop(
	config *server.Config,
	outputter command.OutputFormatter,
) error {
	serverInstance, err := server.NewServer(config)
	if err != nil {
		return err
	}

	return helper.HandleSignals(serverInstance.Close, outputter)
}
