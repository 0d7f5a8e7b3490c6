package jsonrpc

import (
	"github.com/notuslabs/notus-aa/helper/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type AAAPILabels prometheus.Labels

var (
	AASendRawOperationLabel      = AAAPILabels{"method": "aa_sendRawOperation"}
	AAGetOperationReceiptLabel   = AAAPILabels{"method": "aa_getOperationReceipt"}
	AAGetReceiptsBySenderLabel   = AAAPILabels{"method": "aa_getReceiptsBySender"}
	AAGetOperationDigestLabel    = AAAPILabels{"method": "aa_getOperationDigest"}
	AAGetSequenceNumberLabel     = AAAPILabels{"method": "aa_getSequenceNumber"}
	AAComputeAccountAddressLabel = AAAPILabels{"method": "aa_computeAccountAddress"}
	AACallLabel                  = AAAPILabels{"method": "aa_call"}
	AAGetDeploymentsLabel        = AAAPILabels{"method": "aa_getDeployments"}
)

type EthAPILabels prometheus.Labels

var (
	EthChainIDLabel    = EthAPILabels{"method": "eth_chainId"}
	EthGetBalanceLabel = EthAPILabels{"method": "eth_getBalance"}
)

type Web3APILabels prometheus.Labels

var (
	Web3ClientVersionLabel = Web3APILabels{"method": "web3_clientVersion"}
	Web3Sha3Label          = Web3APILabels{"method": "web3_sha3"}
)

// Metrics represents the jsonrpc metrics
type Metrics struct {
	// Requests number
	requests prometheus.Counter

	// Errors number
	errors prometheus.Counter

	// Requests duration (seconds)
	responseTime prometheus.Histogram

	// Rejected operations by failure kind
	rejected *prometheus.CounterVec

	aaAPI   *prometheus.CounterVec
	ethAPI  *prometheus.CounterVec
	web3API *prometheus.CounterVec
}

func (m *Metrics) RequestsCounterInc() {
	metrics.CounterInc(m.requests)
}

func (m *Metrics) ErrorsCounterInc() {
	metrics.CounterInc(m.errors)
}

func (m *Metrics) ResponseTimeObserve(duration float64) {
	metrics.HistogramObserve(m.responseTime, duration)
}

func (m *Metrics) RejectedCounterInc(kind string) {
	if m.rejected != nil {
		m.rejected.With(prometheus.Labels{"kind": kind}).Inc()
	}
}

func (m *Metrics) AAAPICounterInc(label AAAPILabels) {
	if m.aaAPI != nil {
		m.aaAPI.With((prometheus.Labels)(label)).Inc()
	}
}

func (m *Metrics) EthAPICounterInc(label EthAPILabels) {
	if m.ethAPI != nil {
		m.ethAPI.With((prometheus.Labels)(label)).Inc()
	}
}

func (m *Metrics) Web3APICounterInc(label Web3APILabels) {
	if m.web3API != nil {
		m.web3API.With((prometheus.Labels)(label)).Inc()
	}
}

// GetPrometheusMetrics return the jsonrpc metrics instance
func GetPrometheusMetrics(namespace string, labelsWithValues ...string) *Metrics {
	constLabels := metrics.ParseLabels(labelsWithValues...)

	apiCounter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "jsonrpc",
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}, []string{"method"})
	}

	m := &Metrics{
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "jsonrpc",
			Name:        "requests",
			Help:        "Requests number",
			ConstLabels: constLabels,
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "jsonrpc",
			Name:        "request_errors",
			Help:        "Request errors number",
			ConstLabels: constLabels,
		}),
		responseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jsonrpc",
			Name:      "response_seconds",
			Help:      "Response time (seconds)",
			Buckets: []float64{
				0.001,
				0.01,
				0.1,
				0.5,
				1.0,
				2.0,
			},
			ConstLabels: constLabels,
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "jsonrpc",
			Name:        "rejected_operations",
			Help:        "Operations rejected at submission",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		aaAPI:   apiCounter("aa_api_requests", "aa api requests"),
		ethAPI:  apiCounter("eth_api_requests", "eth api requests"),
		web3API: apiCounter("web3_api_requests", "web3 api requests"),
	}

	prometheus.MustRegister(
		m.requests,
		m.errors,
		m.responseTime,
		m.rejected,
		m.aaAPI,
		m.ethAPI,
		m.web3API,
	)

	return m
}

// NilMetrics will return the non operational jsonrpc metrics
func NilMetrics() *Metrics {
	return &Metrics{}
}

// NewDummyMetrics will return the no nil jsonrpc metrics
func NewDummyMetrics(metrics *Metrics) *Metrics {
	if metrics != nil {
		return metrics
	}

	return NilMetrics()
}
