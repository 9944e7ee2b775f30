// Package metrics instruments transfers with Prometheus counters,
// replacing a hand-rolled atomic-counter struct with the same field set
// exposed as scrapeable metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector is the small metrics sink the protocol core depends on,
// mirroring the logging package's treatment of instrumentation as an
// external collaborator.
type Collector interface {
	AddBytesSent(n int)
	AddBytesReceived(n int)
	AddSegmentSent()
	AddSegmentReceived()
	AddRetransmission()
	AddNackReceived()
	AddTimeout()
	AddError()
}

// noop discards everything; the engine's zero-value default.
type noop struct{}

func (noop) AddBytesSent(int)     {}
func (noop) AddBytesReceived(int) {}
func (noop) AddSegmentSent()      {}
func (noop) AddSegmentReceived()  {}
func (noop) AddRetransmission()   {}
func (noop) AddNackReceived()     {}
func (noop) AddTimeout()          {}
func (noop) AddError()            {}

// Noop returns a Collector that discards everything.
func Noop() Collector { return noop{} }

// PrometheusCollector is a Collector backed by Prometheus counters. It can
// be registered once and shared across every Session in a process.
type PrometheusCollector struct {
	bytesSent        prometheus.Counter
	bytesReceived    prometheus.Counter
	segmentsSent     prometheus.Counter
	segmentsReceived prometheus.Counter
	retransmissions  prometheus.Counter
	nacksReceived    prometheus.Counter
	timeouts         prometheus.Counter
	errors           prometheus.Counter
}

// NewPrometheusCollector builds and registers the danp-ftp metric family
// with reg. Pass prometheus.NewRegistry() in tests to avoid colliding with
// the default global registry.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "danpftp", Name: "bytes_sent_total", Help: "Total payload bytes sent in DATA packets.",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "danpftp", Name: "bytes_received_total", Help: "Total payload bytes accepted by the sink.",
		}),
		segmentsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "danpftp", Name: "segments_sent_total", Help: "Total DATA packets sent.",
		}),
		segmentsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "danpftp", Name: "segments_received_total", Help: "Total DATA packets accepted and ACKed.",
		}),
		retransmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "danpftp", Name: "retransmissions_total", Help: "Total chunk retry attempts beyond the first.",
		}),
		nacksReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "danpftp", Name: "nacks_received_total", Help: "Total NACKs received while transmitting.",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "danpftp", Name: "timeouts_total", Help: "Total receive timeouts observed.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "danpftp", Name: "errors_total", Help: "Total transfer failures.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			c.bytesSent, c.bytesReceived, c.segmentsSent, c.segmentsReceived,
			c.retransmissions, c.nacksReceived, c.timeouts, c.errors,
		)
	}
	return c
}

func (c *PrometheusCollector) AddBytesSent(n int)     { c.bytesSent.Add(float64(n)) }
func (c *PrometheusCollector) AddBytesReceived(n int) { c.bytesReceived.Add(float64(n)) }
func (c *PrometheusCollector) AddSegmentSent()        { c.segmentsSent.Inc() }
func (c *PrometheusCollector) AddSegmentReceived()    { c.segmentsReceived.Inc() }
func (c *PrometheusCollector) AddRetransmission()     { c.retransmissions.Inc() }
func (c *PrometheusCollector) AddNackReceived()       { c.nacksReceived.Inc() }
func (c *PrometheusCollector) AddTimeout()            { c.timeouts.Inc() }
func (c *PrometheusCollector) AddError()              { c.errors.Inc() }
