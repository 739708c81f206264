package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/screener")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8085", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, []string{"BE", "BZ"}, cfg.Filter.ExcludedSeries)
	assert.Equal(t, 100.0, cfg.Filter.MinMarketCapCr)
	assert.Equal(t, 10.0, cfg.Filter.MinDailyValueLakh)
	assert.Equal(t, 50, cfg.Filter.SampleSize)
	assert.Equal(t, 5, cfg.Filter.TrailingDays)
	assert.Equal(t, 50*time.Millisecond, cfg.Filter.CallDelay)
	assert.Equal(t, time.Second, cfg.Filter.BatchDelay)
	assert.Equal(t, ".NS", cfg.Yahoo.SymbolSuffix)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/screener")
	t.Setenv("FILTER_EXCLUDED_SERIES", "BE,BZ,SM")
	t.Setenv("FILTER_SAMPLE_SIZE", "100")
	t.Setenv("FILTER_MIN_MARKET_CAP_CR", "250.5")
	t.Setenv("FILTER_CALL_DELAY", "10ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"BE", "BZ", "SM"}, cfg.Filter.ExcludedSeries)
	assert.Equal(t, 100, cfg.Filter.SampleSize)
	assert.Equal(t, 250.5, cfg.Filter.MinMarketCapCr)
	assert.Equal(t, 10*time.Millisecond, cfg.Filter.CallDelay)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing database url",
			env:  map[string]string{"DATABASE_URL": ""},
		},
		{
			name: "bad environment",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/screener",
				"ENV":          "prod",
			},
		},
		{
			name: "non-positive sample size",
			env: map[string]string{
				"DATABASE_URL":       "postgres://localhost/screener",
				"FILTER_SAMPLE_SIZE": "-1",
			},
		},
		{
			name: "non-positive trailing days",
			env: map[string]string{
				"DATABASE_URL":         "postgres://localhost/screener",
				"FILTER_TRAILING_DAYS": "0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "abc")
	t.Setenv("TEST_FLOAT", "1.5")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DURATION", "2h")
	t.Setenv("TEST_SLICE", "a, b ,,c")

	assert.Equal(t, "value", getEnv("TEST_STR", "default"))
	assert.Equal(t, "default", getEnv("TEST_UNSET", "default"))

	assert.Equal(t, 42, getEnvAsInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvAsInt("TEST_BAD_INT", 7))

	assert.Equal(t, 1.5, getEnvAsFloat("TEST_FLOAT", 0))
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1s"))
	assert.Equal(t, []string{"a", "b", "c"}, getEnvAsSlice("TEST_SLICE", nil))
}
