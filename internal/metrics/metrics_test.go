package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klaxonwire/goircd/internal/metrics"
)

func TestPrometheusRecorderExposesGauges(t *testing.T) {
	p := metrics.NewPrometheus()
	p.SetUsers(3)
	p.SetChannels(2)

	got, err := testutil.GatherAndCount(p.Registry)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestNoOpDiscardsObservations(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.NoOp{}.SetUsers(5)
		metrics.NoOp{}.SetChannels(1)
	})
}
