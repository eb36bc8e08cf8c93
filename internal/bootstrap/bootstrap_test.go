package bootstrap

import (
	"testing"

	"alera/internal/config"
	"alera/internal/models"
	"alera/internal/vector"

	"github.com/stretchr/testify/require"
)

func TestPGMetricsPerCategory(t *testing.T) {
	metrics, err := pgMetrics(&config.Catalog{Categories: map[string]config.CategorySource{
		"draft":     {Metric: "l2"},
		"midseason": {Metric: "ip"},
	}})
	require.NoError(t, err)
	require.Equal(t, vector.MetricL2, metrics[models.CategoryDraft])
	require.Equal(t, vector.MetricInnerProduct, metrics[models.CategoryMidseason])

	metrics, err = pgMetrics(&config.Catalog{Categories: map[string]config.CategorySource{
		"midseason": {Metric: "ip"},
	}})
	require.NoError(t, err)
	_, ok := metrics[models.CategoryDraft]
	require.False(t, ok)

	_, err = pgMetrics(&config.Catalog{Categories: map[string]config.CategorySource{
		"draft": {Metric: "cosine"},
	}})
	require.Error(t, err)
}

func TestRunnerRejectsUnknownExecutor(t *testing.T) {
	c := &Components{Config: config.Config{Executor: "cron"}}
	_, _, err := c.Runner(nil)
	require.Error(t, err)
}
