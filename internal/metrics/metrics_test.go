package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollectorTracksCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.AddBytesSent(10)
	c.AddBytesSent(5)
	c.AddSegmentSent()
	c.AddRetransmission()
	c.AddNackReceived()
	c.AddTimeout()
	c.AddError()

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}

	require.Contains(t, byName, "danpftp_bytes_sent_total")
	assert.Equal(t, float64(15), byName["danpftp_bytes_sent_total"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(1), byName["danpftp_segments_sent_total"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(1), byName["danpftp_retransmissions_total"].Metric[0].GetCounter().GetValue())
}

func TestNoopCollectorDoesNotPanic(t *testing.T) {
	c := Noop()
	assert.NotPanics(t, func() {
		c.AddBytesSent(1)
		c.AddBytesReceived(1)
		c.AddSegmentSent()
		c.AddSegmentReceived()
		c.AddRetransmission()
		c.AddNackReceived()
		c.AddTimeout()
		c.AddError()
	})
}
