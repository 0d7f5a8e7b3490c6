package server

import (
	"github.com/notuslabs/notus-aa/helper/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type jsonrpcStoreMetrics struct {
	counter *prometheus.CounterVec
}

func (m *jsonrpcStoreMetrics) inc(method string) {
	if m.counter != nil {
		m.counter.With(prometheus.Labels{"method": method}).Inc()
	}
}

// SubmitOperation api calls
func (m *jsonrpcStoreMetrics) SubmitOperationInc() {
	m.inc("SubmitOperation")
}

// GetReceipt api calls
func (m *jsonrpcStoreMetrics) GetReceiptInc() {
	m.inc("GetReceipt")
}

// GetReceiptsBySender api calls
func (m *jsonrpcStoreMetrics) GetReceiptsBySenderInc() {
	m.inc("GetReceiptsBySender")
}

// GetSequenceNumber api calls
func (m *jsonrpcStoreMetrics) GetSequenceNumberInc() {
	m.inc("GetSequenceNumber")
}

// ComputeAccountAddress api calls
func (m *jsonrpcStoreMetrics) ComputeAccountAddressInc() {
	m.inc("ComputeAccountAddress")
}

// Call api calls
func (m *jsonrpcStoreMetrics) CallInc() {
	m.inc("Call")
}

// GetBalance api calls
func (m *jsonrpcStoreMetrics) GetBalanceInc() {
	m.inc("GetBalance")
}

// NewJSONRPCStoreMetrics return the JSONRPCStore metrics instance
func NewJSONRPCStoreMetrics(namespace string, labelsWithValues ...string) *jsonrpcStoreMetrics {
	constLabels := metrics.ParseLabels(labelsWithValues...)

	m := &jsonrpcStoreMetrics{
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "jsonrpc_store",
			Name:        "api_call_counter",
			Help:        "api call counter",
			ConstLabels: constLabels,
		}, []string{"method"}),
	}

	prometheus.MustRegister(m.counter)

	return m
}

// JSONRPCStoreNilMetrics will return the non operational jsonrpc metrics
func JSONRPCStoreNilMetrics() *jsonrpcStoreMetrics {
	return &jsonrpcStoreMetrics{
		counter: nil,
	}
}
