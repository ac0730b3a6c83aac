package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store          StoreConfig          `yaml:"store" mapstructure:"store"`
	Ebay           EbayConfig           `yaml:"ebay" mapstructure:"ebay"`
	BestBuy        BestBuyConfig        `yaml:"bestbuy" mapstructure:"bestbuy"`
	GoogleShopping GoogleShoppingConfig `yaml:"google_shopping" mapstructure:"google_shopping"`
	PriceAPI       PriceAPIConfig       `yaml:"priceapi" mapstructure:"priceapi"`
	PriceSpider    PriceSpiderConfig    `yaml:"pricespider" mapstructure:"pricespider"`
	HuggingFace    HuggingFaceConfig    `yaml:"huggingface" mapstructure:"huggingface"`
	Anthropic      AnthropicConfig      `yaml:"anthropic" mapstructure:"anthropic"`
	Review         ReviewConfig         `yaml:"review" mapstructure:"review"`
	Scoring        ScoringConfig        `yaml:"scoring" mapstructure:"scoring"`
	History        HistoryConfig        `yaml:"history" mapstructure:"history"`
	Pipeline       PipelineConfig       `yaml:"pipeline" mapstructure:"pipeline"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// EbayConfig holds eBay Finding API settings.
type EbayConfig struct {
	AppID   string `yaml:"app_id" mapstructure:"app_id"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// BestBuyConfig holds Best Buy Products API settings.
type BestBuyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GoogleShoppingConfig holds Google Custom Search settings used for
// shopping-result price extraction.
type GoogleShoppingConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	EngineID string `yaml:"engine_id" mapstructure:"engine_id"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// PriceAPIConfig holds PriceAPI job settings.
type PriceAPIConfig struct {
	Token       string `yaml:"token" mapstructure:"token"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	PollSecs    int    `yaml:"poll_secs" mapstructure:"poll_secs"`
	MaxPollSecs int    `yaml:"max_poll_secs" mapstructure:"max_poll_secs"`
}

// PriceSpiderConfig holds settings for the HTML price-table scraper.
type PriceSpiderConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HuggingFaceConfig holds HuggingFace Inference API settings.
type HuggingFaceConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings for the Claude classifier.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ReviewConfig configures the review analysis stage.
type ReviewConfig struct {
	// Classifier selects the sentiment backend: keyword, huggingface,
	// or claude.
	Classifier   string `yaml:"classifier" mapstructure:"classifier"`
	Concurrency  int    `yaml:"concurrency" mapstructure:"concurrency"`
	RetryDelayMS int    `yaml:"retry_delay_ms" mapstructure:"retry_delay_ms"`
}

// ScoringConfig configures recommendation scoring weights.
type ScoringConfig struct {
	PriceWeight       float64 `yaml:"price_weight" mapstructure:"price_weight"`
	SentimentWeight   float64 `yaml:"sentiment_weight" mapstructure:"sentiment_weight"`
	RatingWeight      float64 `yaml:"rating_weight" mapstructure:"rating_weight"`
	ReviewCountWeight float64 `yaml:"review_count_weight" mapstructure:"review_count_weight"`
	BudgetWeight      float64 `yaml:"budget_weight" mapstructure:"budget_weight"`
}

// HistoryConfig configures the price history store.
type HistoryConfig struct {
	WindowDays int `yaml:"window_days" mapstructure:"window_days"`
}

// PipelineConfig configures pipeline execution.
type PipelineConfig struct {
	StageTimeoutSecs int `yaml:"stage_timeout_secs" mapstructure:"stage_timeout_secs"`
	MaxResults       int `yaml:"max_results" mapstructure:"max_results"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEALSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "dealscope.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("ebay.base_url", "https://svcs.ebay.com/services/search/FindingService/v1")
	v.SetDefault("bestbuy.base_url", "https://api.bestbuy.com/v1")
	v.SetDefault("google_shopping.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("priceapi.base_url", "https://api.priceapi.com/v2")
	v.SetDefault("priceapi.poll_secs", 5)
	v.SetDefault("priceapi.max_poll_secs", 60)
	v.SetDefault("huggingface.base_url", "https://api-inference.huggingface.co")
	v.SetDefault("huggingface.model", "cardiffnlp/twitter-roberta-base-sentiment-latest")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("review.classifier", "keyword")
	v.SetDefault("review.concurrency", 8)
	v.SetDefault("review.retry_delay_ms", 2000)
	v.SetDefault("scoring.price_weight", 0.3)
	v.SetDefault("scoring.sentiment_weight", 0.4)
	v.SetDefault("scoring.rating_weight", 0.2)
	v.SetDefault("scoring.review_count_weight", 0.1)
	v.SetDefault("scoring.budget_weight", 0.5)
	v.SetDefault("history.window_days", 30)
	v.SetDefault("pipeline.stage_timeout_secs", 30)
	v.SetDefault("pipeline.max_results", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
