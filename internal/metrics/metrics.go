package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds all Prometheus metrics for the bridge indexer.
type Metrics struct {
	// Ingestion metrics
	LogsDecoded    *prometheus.CounterVec
	DecodeFailures *prometheus.CounterVec
	EventLatency   *prometheus.HistogramVec

	// Reconciliation metrics
	OutWrites  *prometheus.CounterVec
	InWrites   *prometheus.CounterVec
	LostWrites *prometheus.CounterVec

	// Checkpoint metrics
	CheckpointBlock *prometheus.GaugeVec

	// RPC metrics
	RPCLatency     *prometheus.HistogramVec
	ReceiptLatency *prometheus.HistogramVec

	// Registry warmup metrics
	WarmupLatency *prometheus.HistogramVec
	TokensTracked *prometheus.GaugeVec

	// System metrics
	TailConnected *prometheus.GaugeVec
	BackfillLag   *prometheus.GaugeVec

	server *http.Server
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		LogsDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgeindexer_logs_decoded_total",
				Help: "Total number of bridge logs successfully decoded, by chain and direction",
			},
			[]string{"chain", "direction"},
		),
		DecodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgeindexer_decode_failures_total",
				Help: "Total number of logs that failed to decode against every ABI generation, by chain",
			},
			[]string{"chain"},
		),
		EventLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridgeindexer_event_latency_seconds",
				Help:    "Latency from block timestamp to event resolution",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 15), // 10ms to ~164s
			},
			[]string{"chain"},
		),
		OutWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgeindexer_out_writes_total",
				Help: "Total number of resolved OUT records written to txs",
			},
			[]string{"chain"},
		),
		InWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgeindexer_in_writes_total",
				Help: "Total number of IN records that completed a pending OUT",
			},
			[]string{"chain"},
		),
		LostWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridgeindexer_lost_writes_total",
				Help: "Total number of IN records written to lost_txs with no matching pending OUT",
			},
			[]string{"chain"},
		),
		CheckpointBlock: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridgeindexer_checkpoint_block",
				Help: "Highest block number persisted to the checkpoint store",
			},
			[]string{"chain", "namespace"},
		),
		RPCLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridgeindexer_rpc_latency_seconds",
				Help:    "Latency of RPC calls, by chain and method",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"chain", "method"},
		),
		ReceiptLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridgeindexer_receipt_poll_latency_seconds",
				Help:    "Time spent polling for a transaction receipt to be mined",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
			},
			[]string{"chain"},
		),
		WarmupLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridgeindexer_registry_warmup_seconds",
				Help:    "Time to warm up the token and pool registries for a chain",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"chain"},
		),
		TokensTracked: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridgeindexer_tokens_tracked",
				Help: "Number of tokens with warmed-up metadata, by chain",
			},
			[]string{"chain"},
		),
		TailConnected: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridgeindexer_tail_connected",
				Help: "Whether a chain's tail filter is currently installed (1=yes, 0=no)",
			},
			[]string{"chain"},
		),
		BackfillLag: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridgeindexer_backfill_lag_blocks",
				Help: "Blocks remaining between a chain's backfill cursor and its head at last observation",
			},
			[]string{"chain"},
		),
	}

	prometheus.MustRegister(
		m.LogsDecoded,
		m.DecodeFailures,
		m.EventLatency,
		m.OutWrites,
		m.InWrites,
		m.LostWrites,
		m.CheckpointBlock,
		m.RPCLatency,
		m.ReceiptLatency,
		m.WarmupLatency,
		m.TokensTracked,
		m.TailConnected,
		m.BackfillLag,
	)

	return m
}

// StartServer starts the HTTP server for Prometheus metrics.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	m.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		log.Info().Int("port", port).Str("path", path).Msg("Starting metrics server")
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	return nil
}

// Shutdown gracefully stops the metrics server.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server != nil {
		return m.server.Shutdown(ctx)
	}
	return nil
}

// RecordLogDecoded increments the decode counter for a chain/direction pair.
func (m *Metrics) RecordLogDecoded(chain, direction string) {
	m.LogsDecoded.WithLabelValues(chain, direction).Inc()
}

// RecordDecodeFailure increments the decode failure counter for a chain.
func (m *Metrics) RecordDecodeFailure(chain string) {
	m.DecodeFailures.WithLabelValues(chain).Inc()
}

// RecordEventLatency records the latency from block timestamp to resolution.
func (m *Metrics) RecordEventLatency(chain string, blockTime time.Time) {
	m.EventLatency.WithLabelValues(chain).Observe(time.Since(blockTime).Seconds())
}

// RecordOutWrite increments the OUT write counter for a chain.
func (m *Metrics) RecordOutWrite(chain string) {
	m.OutWrites.WithLabelValues(chain).Inc()
}

// RecordInWrite increments the IN write counter for a chain.
func (m *Metrics) RecordInWrite(chain string) {
	m.InWrites.WithLabelValues(chain).Inc()
}

// RecordLostWrite increments the lost-IN write counter for a chain.
func (m *Metrics) RecordLostWrite(chain string) {
	m.LostWrites.WithLabelValues(chain).Inc()
}

// SetCheckpointBlock records the latest persisted checkpoint block.
func (m *Metrics) SetCheckpointBlock(chain, namespace string, block uint64) {
	m.CheckpointBlock.WithLabelValues(chain, namespace).Set(float64(block))
}

// RecordRPCLatency records the latency of an RPC call.
func (m *Metrics) RecordRPCLatency(chain, method string, d time.Duration) {
	m.RPCLatency.WithLabelValues(chain, method).Observe(d.Seconds())
}

// RecordReceiptLatency records the time spent polling for a mined receipt.
func (m *Metrics) RecordReceiptLatency(chain string, d time.Duration) {
	m.ReceiptLatency.WithLabelValues(chain).Observe(d.Seconds())
}

// RecordWarmupLatency records the time to warm up a chain's registries.
func (m *Metrics) RecordWarmupLatency(chain string, d time.Duration) {
	m.WarmupLatency.WithLabelValues(chain).Observe(d.Seconds())
}

// SetTokensTracked sets the number of warmed-up tokens for a chain.
func (m *Metrics) SetTokensTracked(chain string, count int) {
	m.TokensTracked.WithLabelValues(chain).Set(float64(count))
}

// SetTailConnected sets whether a chain's tail filter is currently installed.
func (m *Metrics) SetTailConnected(chain string, connected bool) {
	if connected {
		m.TailConnected.WithLabelValues(chain).Set(1)
	} else {
		m.TailConnected.WithLabelValues(chain).Set(0)
	}
}

// SetBackfillLag records the remaining block distance to head.
func (m *Metrics) SetBackfillLag(chain string, blocks uint64) {
	m.BackfillLag.WithLabelValues(chain).Set(float64(blocks))
}
