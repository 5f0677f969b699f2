package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCIGO_LEAF_SIZE", "10")
	t.Setenv("SCIGO_PIVOT_SELECTION", "random")
	t.Setenv("SCIGO_CONSTRUCTION", "median_split")
	t.Setenv("SCIGO_CENTER", "medoid")
	t.Setenv("SCIGO_PARALLEL", "true")
	t.Setenv("SCIGO_WORKERS", "4")
	t.Setenv("SCIGO_FORK_THRESHOLD", "64")
	t.Setenv("SCIGO_SEED", "42")
	t.Setenv("SCIGO_METRIC", "cosine")
	t.Setenv("SCIGO_LOG_FORMAT", "console")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.LeafSize)
	assert.Equal(t, "random", cfg.PivotSelection)
	assert.Equal(t, "median_split", cfg.Construction)
	assert.Equal(t, "medoid", cfg.Center)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 64, cfg.ForkThreshold)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "cosine", cfg.Metric)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SCIGO_LEAF_SIZE", "0"},
		{"SCIGO_LEAF_SIZE", "abc"},
		{"SCIGO_WORKERS", "-1"},
		{"SCIGO_FORK_THRESHOLD", "0"},
		{"SCIGO_LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}

	cfg := Default()
	cfg.LeafSize = -3
	var ve *errors.ValidationError
	assert.True(t, errors.As(cfg.Validate(), &ve))
	assert.Equal(t, "LEAF_SIZE", ve.ParamName)

	cfg = Default()
	cfg.LogFormat = "slog"
	assert.NoError(t, cfg.Validate())
}
