package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Gauges
	roomsActive       prometheus.Gauge
	connectionsActive prometheus.Gauge

	// Counters
	connectionsTotal  prometheus.Counter
	joinsTotal        prometheus.Counter
	joinsRejected     prometheus.Counter
	messagesForwarded *prometheus.CounterVec
	messagesDropped   *prometheus.CounterVec
	protocolErrors    prometheus.Counter

	// Histograms
	messageSizeBytes prometheus.Histogram
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		roomsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "telecare_rooms_active",
			Help: "Number of rooms currently registered",
		}),

		connectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "telecare_signal_connections_active",
			Help: "Number of open signaling connections",
		}),

		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telecare_signal_connections_total",
			Help: "Total number of signaling connections accepted",
		}),

		joinsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telecare_room_joins_total",
			Help: "Total number of accepted room joins",
		}),

		joinsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telecare_room_joins_rejected_total",
			Help: "Total number of joins rejected because the room was full",
		}),

		messagesForwarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telecare_messages_forwarded_total",
			Help: "Total number of signaling messages relayed between peers",
		}, []string{"type"}),

		messagesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "telecare_messages_dropped_total",
			Help: "Total number of undeliverable or discarded messages",
		}, []string{"reason"}),

		protocolErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telecare_protocol_errors_total",
			Help: "Total number of malformed or unrecognized inbound frames",
		}),

		messageSizeBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telecare_message_size_bytes",
			Help:    "Size of inbound signaling frames",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}
}

func (p *PrometheusCollector) RecordConnectionOpened() {
	p.connectionsActive.Inc()
	p.connectionsTotal.Inc()
}

func (p *PrometheusCollector) RecordConnectionClosed() {
	p.connectionsActive.Dec()
}

func (p *PrometheusCollector) RecordRoomCreated() {
	p.roomsActive.Inc()
}

func (p *PrometheusCollector) RecordRoomDeleted() {
	p.roomsActive.Dec()
}

func (p *PrometheusCollector) RecordJoinAccepted() {
	p.joinsTotal.Inc()
}

func (p *PrometheusCollector) RecordJoinRejected() {
	p.joinsRejected.Inc()
}

func (p *PrometheusCollector) RecordMessageForwarded(messageType string) {
	p.messagesForwarded.WithLabelValues(messageType).Inc()
}

func (p *PrometheusCollector) RecordMessageDropped(reason string) {
	p.messagesDropped.WithLabelValues(reason).Inc()
}

func (p *PrometheusCollector) RecordProtocolError() {
	p.protocolErrors.Inc()
}

func (p *PrometheusCollector) RecordMessageSize(sizeBytes int) {
	p.messageSizeBytes.Observe(float64(sizeBytes))
}
