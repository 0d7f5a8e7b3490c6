package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/notuslabs/notus-aa/archive"
	"github.com/notuslabs/notus-aa/chain"
	"github.com/notuslabs/notus-aa/contracts"
	"github.com/notuslabs/notus-aa/helper/common"
	"github.com/notuslabs/notus-aa/helper/kvdb"
	"github.com/notuslabs/notus-aa/helper/telemetry"
	"github.com/notuslabs/notus-aa/jsonrpc"
	"github.com/notuslabs/notus-aa/state"
	"github.com/notuslabs/notus-aa/storage"
)

var (
	ErrGenesisMismatch = errors.New("genesis does not match the stored ledger")
	ErrNoGenesisMarker = errors.New("ledger holds state but no genesis")
	ErrServerClosed    = errors.New("server closed")
)

// Server is the central manager of the ledger node
type Server struct {
	logger hclog.Logger
	config *Config
	chain  *chain.Chain

	db       kvdb.KVBatchStorage
	state    *state.State
	executor *state.Executor
	storage  *storage.KeyValueStorage

	hashes   *contracts.Fingerprints
	deployed *chain.Deployed

	// lock orders the operations: one is applied at a time
	lock sync.RWMutex

	// jsonrpc stack
	jsonrpcServer *jsonrpc.JSONRPC

	serverMetrics *serverMetrics

	prometheusServer *http.Server
	tracerProvider   telemetry.TracerProvider

	closed *atomic.Bool
}

const (
	loggerDomainName = "notus-aa"
	ledgerDirName    = "ledger"
)

var dirPaths = []string{
	ledgerDirName,
}

// newFileLogger returns logger instance that writes all logs to a specified file.
//
// If log file can't be created, it returns an error
func newFileLogger(config *Config) (hclog.Logger, error) {
	logFileWriter, err := os.OpenFile(
		config.LogFilePath,
		os.O_CREATE+os.O_RDWR+os.O_APPEND,
		0640,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create log file, %w", err)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   loggerDomainName,
		Level:  config.LogLevel,
		Output: logFileWriter,
	}), nil
}

// newCLILogger returns minimal logger instance that sends all logs to standard output
func newCLILogger(config *Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  loggerDomainName,
		Level: config.LogLevel,
	})
}

// newLoggerFromConfig creates a new logger which logs to a specified file.
//
// If log file is not set it outputs to standard output ( console ).
// If log file is specified, and it can't be created the server command will error out
func newLoggerFromConfig(config *Config) (hclog.Logger, error) {
	if config.LogFilePath != "" {
		return newFileLogger(config)
	}

	return newCLILogger(config), nil
}

// NewLevelDBBuilder returns the leveldb builder of the ledger directory in dataDir
func NewLevelDBBuilder(logger hclog.Logger, options *LeveldbOptions, dataDir string) kvdb.LevelDBBuilder {
	leveldbBuilder := kvdb.NewLevelDBBuilder(
		logger,
		filepath.Join(dataDir, ledgerDirName),
	)

	if options == nil {
		return leveldbBuilder
	}

	leveldbBuilder.SetCacheSize(options.CacheSize).
		SetHandles(options.Handles).
		SetBloomKeyBits(options.BloomKeyBits).
		SetCompactionTableSize(options.CompactionTableSize).
		SetCompactionTotalSize(options.CompactionTotalSize).
		SetNoSync(options.NoSync)

	return leveldbBuilder
}

// NewServer creates a new node, using the passed in configuration
func NewServer(config *Config) (*Server, error) {
	logger, err := newLoggerFromConfig(config)
	if err != nil {
		return nil, fmt.Errorf("could not setup new logger instance, %w", err)
	}

	return newServer(logger, config)
}

func newServer(logger hclog.Logger, config *Config) (*Server, error) {
	return newServerWithDB(logger, config, nil)
}

// newServerWithDB runs the node on an already opened database, or opens the
// configured one when db is nil
func newServerWithDB(logger hclog.Logger, config *Config, db kvdb.KVBatchStorage) (*Server, error) {
	m := &Server{
		logger: logger,
		config: config,
		chain:  config.Chain,
		db:     db,
		closed: atomic.NewBool(false),
	}

	if config.Telemetry == nil {
		config.Telemetry = &Telemetry{}
	}

	chainID := strconv.FormatUint(config.Chain.Params.ChainID, 10)

	if config.Telemetry.PrometheusAddr != nil {
		m.serverMetrics = metricProvider("notus", chainID, true)
		m.prometheusServer = m.startPrometheusServer(config.Telemetry.PrometheusAddr)
	} else {
		m.serverMetrics = metricProvider("notus", chainID, false)
	}

	if err := m.setupTracing(); err != nil {
		m.Close()

		return nil, err
	}

	if err := m.setupDB(); err != nil {
		m.Close()

		return nil, err
	}

	if err := m.setupLedger(); err != nil {
		m.Close()

		return nil, err
	}

	// setup and start jsonrpc server
	if err := m.setupJSONRPC(); err != nil {
		m.Close()

		return nil, err
	}

	return m, nil
}

func (s *Server) setupTracing() error {
	if s.config.Telemetry.JaegerURL == "" {
		s.tracerProvider = telemetry.NewNilTracerProvider(context.Background())

		return nil
	}

	provider, err := telemetry.NewTracerProvider(context.Background(), s.config.Telemetry.JaegerURL, loggerDomainName)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	s.tracerProvider = provider

	return nil
}

// setupDB opens the node database and restores an archive into it when configured
func (s *Server) setupDB() error {
	if s.db != nil {
		return s.restoreLedger()
	}

	if s.config.DataDir == "" {
		s.logger.Info("Data dir not set, keeping the ledger in memory")

		s.db = kvdb.NewMemoryStorage()
	} else {
		s.logger.Info("Data dir", "path", s.config.DataDir)

		// Generate all the paths in the dataDir
		if err := common.SetupDataDir(s.config.DataDir, dirPaths); err != nil {
			return fmt.Errorf("failed to create data directories: %w", err)
		}

		db, err := NewLevelDBBuilder(s.logger, s.config.LeveldbOptions, s.config.DataDir).Build()
		if err != nil {
			return err
		}

		s.db = db
	}

	return s.restoreLedger()
}

func (s *Server) restoreLedger() error {
	if s.config.RestoreFile == nil {
		return nil
	}

	if _, err := archive.RestoreDB(s.logger.Named("archive"), s.db, *s.config.RestoreFile); err != nil {
		return fmt.Errorf("failed to restore archive: %w", err)
	}

	return nil
}

// setupLedger builds the executor and writes or checks the genesis
func (s *Server) setupLedger() error {
	registry, hashes, err := contracts.NewRegistry()
	if err != nil {
		return err
	}

	s.hashes = hashes
	s.state = state.NewState(s.logger, s.db)

	s.executor = state.NewExecutor(
		s.logger,
		s.state,
		registry,
		s.chain.Params.ChainID,
		s.chain.Params.Operator,
	)
	s.executor.SetMetrics(s.serverMetrics.executor)
	s.executor.SetTracer(s.tracerProvider.NewTracer("executor"))

	cacheSize := s.config.ReceiptCacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultReceiptCacheSize
	}

	if s.storage, err = storage.NewKeyValueStorage(s.db, cacheSize); err != nil {
		return err
	}

	genesis := s.chain.Genesis
	genesisHash := genesis.Hash()

	stored, ok := s.storage.ReadGenesisHash()
	if ok {
		if stored != genesisHash {
			return fmt.Errorf("%w: stored %s, configured %s", ErrGenesisMismatch, stored, genesisHash)
		}

		s.deployed = genesis.Addresses(hashes)
		s.logger.Info("ledger loaded", "genesis", genesisHash, "operations", s.storage.OperationCount())

		return nil
	}

	if deployer, err := s.state.GetAccount(genesis.Deployer); err != nil {
		return err
	} else if deployer != nil {
		return ErrNoGenesisMarker
	}

	batch := s.storage.NewBatch()

	if err := s.storage.StageGenesisHash(batch, genesisHash); err != nil {
		return err
	}

	if s.deployed, err = genesis.WriteWith(s.executor, hashes, batch); err != nil {
		return fmt.Errorf("failed to write genesis: %w", err)
	}

	s.logger.Info("genesis written",
		"hash", genesisHash,
		"token", s.deployed.Token,
		"factory", s.deployed.Factory,
		"paymaster", s.deployed.Paymaster,
	)

	return nil
}

// setupJSONRPC sets up the JSONRPC server, using the set configuration
func (s *Server) setupJSONRPC() error {
	if s.config.JSONRPC == nil {
		return nil
	}

	hub := NewJSONRPCStore(s, s.serverMetrics.jsonrpcStore)

	// format the jsonrpc endpoint namespaces
	namespaces := make([]jsonrpc.Namespace, len(s.config.JSONRPC.JSONNamespace))
	for i, s := range s.config.JSONRPC.JSONNamespace {
		namespaces[i] = jsonrpc.Namespace(s)
	}

	conf := &jsonrpc.Config{
		Store:                    hub,
		Addr:                     s.config.JSONRPC.JSONRPCAddr,
		ChainID:                  s.chain.Params.ChainID,
		AccessControlAllowOrigin: s.config.JSONRPC.AccessControlAllowOrigin,
		BatchLengthLimit:         s.config.JSONRPC.BatchLengthLimit,
		ReceiptsLimit:            s.config.JSONRPC.ReceiptsLimit,
		JSONNamespaces:           namespaces,
		EnableWS:                 s.config.JSONRPC.EnableWS,
		EnablePProf:              s.config.JSONRPC.EnablePprof,
		Metrics:                  s.serverMetrics.jsonrpc,
	}

	srv, err := jsonrpc.NewJSONRPC(s.logger, conf)
	if err != nil {
		return err
	}

	s.jsonrpcServer = srv

	return nil
}

// Chain returns the chain object of the client
func (s *Server) Chain() *chain.Chain {
	return s.chain
}

// JSONRPCAddr returns the address the JSON-RPC server listens on, if any
func (s *Server) JSONRPCAddr() net.Addr {
	if s.jsonrpcServer == nil {
		return nil
	}

	return s.jsonrpcServer.Addr()
}

// Close closes the server
// sequence:
//
//	outer servers: stop accepting requests
//	ledger lock: wait for the operation in flight
//	database: safe close the ledger storage
func (s *Server) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	if err := s.close(); err != nil {
		s.logger.Error("failed to close the server", "err", err)
	}
}

func (s *Server) close() error {
	var result *multierror.Error

	s.logger.Info("close outer servers")

	var group errgroup.Group

	if s.jsonrpcServer != nil {
		group.Go(func() error {
			if err := s.jsonrpcServer.Close(); err != nil {
				return fmt.Errorf("jsonrpc server: %w", err)
			}

			return nil
		})
	}

	if s.prometheusServer != nil {
		group.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := s.prometheusServer.Shutdown(ctx); err != nil {
				return fmt.Errorf("prometheus server: %w", err)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		result = multierror.Append(result, err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.tracerProvider != nil {
		if err := s.tracerProvider.Shutdown(context.Background()); err != nil {
			result = multierror.Append(result, fmt.Errorf("tracer provider: %w", err))
		}
	}

	if s.db != nil {
		s.logger.Info("close ledger storage")

		if err := s.db.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("ledger storage: %w", err))
		}
	}

	return result.ErrorOrNil()
}

func (s *Server) startPrometheusServer(listenAddr *net.TCPAddr) *http.Server {
	srv := &http.Server{
		Addr: listenAddr.String(),
		Handler: promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer, promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{},
			),
		),
		ReadHeaderTimeout: time.Minute,
	}

	go func() {
		s.logger.Info("Prometheus server started", "addr", listenAddr.String())

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Prometheus HTTP server ListenAndServe", "err", err)
		}
	}()

	return srv
}
