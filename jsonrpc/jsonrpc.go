package jsonrpc

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/notuslabs/notus-aa/versioning"
)

const (
	_authoritativeChainName = "notus-aa"

	// maxRequestSize bounds a single http body or websocket frame
	maxRequestSize = 5 * 1024 * 1024
)

type Namespace string

const (
	NamespaceAA   Namespace = "aa"
	NamespaceEth  Namespace = "eth"
	NamespaceWeb3 Namespace = "web3"
)

// DefaultNamespaces are served when none is configured
var DefaultNamespaces = []Namespace{NamespaceAA, NamespaceEth, NamespaceWeb3}

// IsValidNamespace returns true if raw names a served namespace
func IsValidNamespace(raw string) bool {
	for _, ns := range DefaultNamespaces {
		if string(ns) == raw {
			return true
		}
	}

	return false
}

// JSONRPC serves the dispatcher over http and, optionally, websocket
type JSONRPC struct {
	logger     hclog.Logger
	config     *Config
	dispatcher dispatcher
	metrics    *Metrics
	server     *http.Server
	listener   net.Listener
}

type dispatcher interface {
	Handle(reqBody []byte) ([]byte, error)
}

// JSONRPCStore is the ledger as seen by every endpoint
type JSONRPCStore interface {
	aaStore
	ethStore
}

type Config struct {
	Store                    JSONRPCStore
	Addr                     *net.TCPAddr
	ChainID                  uint64
	AccessControlAllowOrigin []string
	BatchLengthLimit         uint64
	ReceiptsLimit            uint64
	JSONNamespaces           []Namespace
	EnableWS                 bool
	EnablePProf              bool

	Metrics *Metrics
}

// NewJSONRPC starts listening on config.Addr
func NewJSONRPC(logger hclog.Logger, config *Config) (*JSONRPC, error) {
	metrics := NewDummyMetrics(config.Metrics)

	srv := &JSONRPC{
		logger:  logger.Named("jsonrpc"),
		config:  config,
		metrics: metrics,
		dispatcher: newDispatcher(
			logger,
			metrics,
			config.Store,
			config.ChainID,
			config.BatchLengthLimit,
			config.ReceiptsLimit,
			config.JSONNamespaces,
		),
	}

	if err := srv.listen(); err != nil {
		return nil, err
	}

	return srv, nil
}

// Addr returns the address the http server listens on
func (j *JSONRPC) Addr() net.Addr {
	return j.listener.Addr()
}

func (j *JSONRPC) Close() error {
	if j.server == nil {
		return nil
	}

	err := j.server.Close()
	j.server = nil

	return err
}

func (j *JSONRPC) listen() error {
	lis, err := net.Listen("tcp", j.config.Addr.String())
	if err != nil {
		return err
	}

	j.listener = lis
	j.server = &http.Server{
		Handler:           j.routes(),
		ReadHeaderTimeout: time.Minute,
	}

	j.logger.Info("http server started", "addr", lis.Addr().String(), "ws", j.config.EnableWS)

	go func(srv *http.Server) {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			j.logger.Error("closed http connection", "err", err)
		}
	}(j.server)

	return nil
}

func (j *JSONRPC) routes() http.Handler {
	// only the default mux carries the pprof handlers
	mux := http.NewServeMux()
	if j.config.EnablePProf {
		mux = http.DefaultServeMux
	}

	mux.Handle("/", withCORS(j.config.AccessControlAllowOrigin, http.HandlerFunc(j.handle)))

	if j.config.EnableWS {
		mux.HandleFunc("/ws", j.handleWs)
	}

	return mux
}

// withCORS echoes the request origin back when it is allowed
func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		for _, allowed := range allowedOrigins {
			if allowed == "*" || allowed == origin {
				w.Header().Set("Access-Control-Allow-Origin", allowed)

				break
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (j *JSONRPC) handle(w http.ResponseWriter, req *http.Request) {
	defer j.metrics.RequestsCounterInc()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set(
		"Access-Control-Allow-Headers",
		"Accept, Content-Type, Content-Length, Accept-Encoding, Authorization",
	)

	switch req.Method {
	case http.MethodPost:
		j.handleJSONRPCRequest(w, req)
	case http.MethodGet:
		j.handleGetRequest(w)
	case http.MethodOptions:
	default:
		j.writeError(w, http.StatusMethodNotAllowed, "method "+req.Method+" not allowed")
	}
}

func (j *JSONRPC) writeError(w http.ResponseWriter, status int, msg string) {
	j.metrics.ErrorsCounterInc()

	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}

func (j *JSONRPC) handleJSONRPCRequest(w http.ResponseWriter, req *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxRequestSize))
	if err != nil {
		j.writeError(w, http.StatusRequestEntityTooLarge, err.Error())

		return
	}

	logger := j.logger.With("req", uuid.New().String())
	logger.Debug("request", "body", string(data))

	start := time.Now()
	resp, err := j.dispatcher.Handle(data)

	j.metrics.ResponseTimeObserve(time.Since(start).Seconds())

	if err != nil {
		j.writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	_, _ = w.Write(resp)

	logger.Debug("response", "body", string(resp))
}

// GetResponse describes the node on a plain GET
type GetResponse struct {
	Name       string      `json:"name"`
	ChainID    uint64      `json:"chain_id"`
	Version    string      `json:"version"`
	Namespaces []Namespace `json:"namespaces"`
}

func (j *JSONRPC) handleGetRequest(w http.ResponseWriter) {
	namespaces := j.config.JSONNamespaces
	if len(namespaces) == 0 {
		namespaces = DefaultNamespaces
	}

	resp, err := json.Marshal(&GetResponse{
		Name:       _authoritativeChainName,
		ChainID:    j.config.ChainID,
		Version:    versioning.Version,
		Namespaces: namespaces,
	})
	if err != nil {
		j.writeError(w, http.StatusInternalServerError, err.Error())

		return
	}

	_, _ = w.Write(resp)
}
