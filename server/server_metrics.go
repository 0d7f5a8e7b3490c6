package server

import (
	"github.com/notuslabs/notus-aa/jsonrpc"
	"github.com/notuslabs/notus-aa/state"
)

// serverMetrics holds the metric instances of all sub systems
type serverMetrics struct {
	executor     *state.Metrics
	jsonrpc      *jsonrpc.Metrics
	jsonrpcStore *jsonrpcStoreMetrics
}

// metricProvider serverMetric instance for the given ChainID and nameSpace
func metricProvider(nameSpace string, chainID string, metricsRequired bool) *serverMetrics {
	if metricsRequired {
		executorMetrics := state.GetPrometheusMetrics(nameSpace, "chain_id", chainID)
		executorMetrics.Register()

		return &serverMetrics{
			executor:     executorMetrics,
			jsonrpc:      jsonrpc.GetPrometheusMetrics(nameSpace, "chain_id", chainID),
			jsonrpcStore: NewJSONRPCStoreMetrics(nameSpace, "chain_id", chainID),
		}
	}

	return &serverMetrics{
		executor:     state.NilMetrics(),
		jsonrpc:      jsonrpc.NilMetrics(),
		jsonrpcStore: JSONRPCStoreNilMetrics(),
	}
}
