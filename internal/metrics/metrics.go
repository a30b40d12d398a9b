// Package metrics registers the Prometheus collectors this server
// publishes over its metrics HTTP endpoint. Grounded on
// runZeroInc-conniver / runZeroInc-sockstats's use of
// github.com/prometheus/client_golang, though those exporters surface
// kernel TCP_INFO fields; ours surfaces the RakNet session/transport
// counters named in SPEC_FULL.md §11.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "raknet_sessions_active",
		Help: "Number of sessions currently tracked by the server.",
	})

	FramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_frames_sent_total",
		Help: "Total number of frame-set datagrams sent by the per-tick flush across all sessions.",
	})

	FramesAcked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_frames_acked_total",
		Help: "Total number of frames cleared from retransmit tracking by an incoming ACK.",
	})

	FramesRetransmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_frames_retransmitted_total",
		Help: "Total number of frame sets requeued by NACK or retransmit timeout.",
	})

	ACKsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_acks_received_total",
		Help: "Total number of ACK datagrams received.",
	})

	NACKsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_nacks_received_total",
		Help: "Total number of NACK datagrams received.",
	})

	FragmentsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_fragments_expired_total",
		Help: "Total number of split-packet buffers dropped for staleness.",
	})

	FragmentsReassembled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_fragments_reassembled_total",
		Help: "Total number of payloads successfully reassembled from fragments.",
	})

	SessionsTimedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raknet_sessions_timed_out_total",
		Help: "Total number of sessions removed for exceeding the activity timeout.",
	})

	SessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "raknet_sessions_closed_total",
		Help: "Total number of sessions removed from the table, by reason.",
	}, []string{"reason"})
)
