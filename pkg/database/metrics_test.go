package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describeAll(c prometheus.Collector) []string {
	ch := make(chan *prometheus.Desc, 20)
	c.Describe(ch)
	close(ch)

	var out []string
	for d := range ch {
		out = append(out, d.String())
	}
	return out
}

func TestNewPoolStatsCollector_NotNil(t *testing.T) {
	// Describe works without a pool; Collect needs one.
	c := NewPoolStatsCollector(nil, "library-service")
	require.NotNil(t, c)
	assert.Equal(t, "library-service", c.service)
}

func TestPoolStatsCollector_Describe(t *testing.T) {
	descs := describeAll(NewPoolStatsCollector(nil, "library-service"))
	assert.Len(t, descs, 8)
}

func TestPoolStatsCollector_DescriptorNames(t *testing.T) {
	descs := strings.Join(describeAll(NewPoolStatsCollector(nil, "library-service")), "\n")

	for _, name := range []string{
		"db_pool_acquired_connections",
		"db_pool_idle_connections",
		"db_pool_total_connections",
		"db_pool_max_connections",
		"db_pool_acquire_count_total",
		"db_pool_acquire_duration_seconds_total",
		"db_pool_canceled_acquire_count_total",
		"db_pool_empty_acquire_count_total",
	} {
		assert.Contains(t, descs, name)
	}
}

func TestRegisterPoolMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NoError(t, RegisterPoolMetrics(reg, nil, "library-service"))
	err := RegisterPoolMetrics(reg, nil, "library-service")

	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}
