package config

import (
	"testing"
	"time"

	"aireliance/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ORACLE_URL", "http://localhost:3001/api/get-ai-answer")
	t.Setenv("SINK_URL", "http://localhost:9000/results")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Experiment.TotalTrials)
	assert.Equal(t, 10, cfg.Experiment.AIEligibleTrials)
	assert.Equal(t, int64(0), cfg.Experiment.Seed)
	assert.Equal(t, SinkHTTP, cfg.Sink.Kind)
	assert.Equal(t, 15*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 8, cfg.Oracle.MaxConcurrent)
	assert.Equal(t, 2*time.Hour, cfg.Experiment.Retention)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TOTAL_TRIALS", "12")
	t.Setenv("AI_ELIGIBLE_TRIALS", "4")
	t.Setenv("SESSION_SEED", "99")
	t.Setenv("ORACLE_TIMEOUT", "2s")
	t.Setenv("SINK_KIND", "Sheets")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Experiment.TotalTrials)
	assert.Equal(t, 4, cfg.Experiment.AIEligibleTrials)
	assert.Equal(t, int64(99), cfg.Experiment.Seed)
	assert.Equal(t, 2*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, SinkSheets, cfg.Sink.Kind)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing oracle":      {"ORACLE_URL": "", "SINK_URL": "http://x"},
		"missing sink url":    {"ORACLE_URL": "http://x", "SINK_URL": ""},
		"unknown sink":        {"ORACLE_URL": "http://x", "SINK_URL": "http://x", "SINK_KIND": "ftp"},
		"postgres needs db":   {"ORACLE_URL": "http://x", "SINK_KIND": "postgres", "DATABASE_URL": ""},
		"zero retention":      {"ORACLE_URL": "http://x", "SINK_URL": "http://x", "SESSION_RETENTION": "0s"},
		"window beyond total": {"ORACLE_URL": "http://x", "SINK_URL": "http://x", "TOTAL_TRIALS": "5", "AI_ELIGIBLE_TRIALS": "6"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadRelay(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := LoadRelay()
	assert.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := LoadRelay()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 150, cfg.MaxTokens)
	assert.InDelta(t, 0.3, cfg.Temperature, 1e-9)
}
