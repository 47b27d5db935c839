package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePublishDuration(15 * time.Millisecond)
	pr.IncPublishOutcome(OutcomeSuccess)
	pr.IncPublishOutcome(OutcomeSuccess)
	pr.IncPublishOutcome(OutcomeFailed)
	pr.AddPublishedBytes(2048)
	pr.AddPublishedBytes(-1)
	pr.IncSidecarFailure("notify")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 4)

	assert.InDelta(t, 2, counterValue(t, mfs, "fwpublish_publish_outcomes_total", "success"), 0)
	assert.InDelta(t, 1, counterValue(t, mfs, "fwpublish_publish_outcomes_total", "failed"), 0)
	assert.InDelta(t, 2048, counterValue(t, mfs, "fwpublish_published_bytes_total", ""), 0)
	assert.InDelta(t, 1, counterValue(t, mfs, "fwpublish_sidecar_failures_total", "notify"), 0)
}

// counterValue finds a counter sample by family name and (optional) single label value.
func counterValue(t *testing.T, mfs []*dto.MetricFamily, name, label string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" || (len(m.GetLabel()) == 1 && m.GetLabel()[0].GetValue() == label) {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncPublishOutcome(OutcomeSuccess)

	path := filepath.Join(t.TempDir(), "fwpublish.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fwpublish_publish_outcomes_total{outcome="success"} 1`)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObservePublishDuration(time.Second)
		r.IncPublishOutcome(OutcomeFailed)
		r.AddPublishedBytes(1)
		r.IncSidecarFailure("manifest")
	})
}
