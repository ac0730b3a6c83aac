package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "dealscope.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://svcs.ebay.com/services/search/FindingService/v1", cfg.Ebay.BaseURL)
	assert.Equal(t, "https://api.bestbuy.com/v1", cfg.BestBuy.BaseURL)
	assert.Equal(t, "https://www.googleapis.com/customsearch/v1", cfg.GoogleShopping.BaseURL)
	assert.Equal(t, 5, cfg.PriceAPI.PollSecs)
	assert.Equal(t, 60, cfg.PriceAPI.MaxPollSecs)
	assert.Equal(t, "cardiffnlp/twitter-roberta-base-sentiment-latest", cfg.HuggingFace.Model)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "keyword", cfg.Review.Classifier)
	assert.Equal(t, 8, cfg.Review.Concurrency)
	assert.Equal(t, 2000, cfg.Review.RetryDelayMS)
	assert.InDelta(t, 0.3, cfg.Scoring.PriceWeight, 0.001)
	assert.InDelta(t, 0.4, cfg.Scoring.SentimentWeight, 0.001)
	assert.InDelta(t, 0.2, cfg.Scoring.RatingWeight, 0.001)
	assert.InDelta(t, 0.1, cfg.Scoring.ReviewCountWeight, 0.001)
	assert.InDelta(t, 0.5, cfg.Scoring.BudgetWeight, 0.001)
	assert.Equal(t, 30, cfg.History.WindowDays)
	assert.Equal(t, 30, cfg.Pipeline.StageTimeoutSecs)
	assert.Equal(t, 5, cfg.Pipeline.MaxResults)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/dealscope
log:
  level: debug
  format: console
server:
  port: 9090
review:
  classifier: huggingface
  concurrency: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/dealscope", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "huggingface", cfg.Review.Classifier)
	assert.Equal(t, 4, cfg.Review.Concurrency)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.History.WindowDays)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
store:
  driver: postgres
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DEALSCOPE_STORE_DRIVER", "sqlite")
	t.Setenv("DEALSCOPE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("DEALSCOPE_SERVER_PORT", "3000")
	t.Setenv("DEALSCOPE_REVIEW_CLASSIFIER", "claude")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "claude", cfg.Review.Classifier)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
