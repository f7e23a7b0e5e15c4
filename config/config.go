package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"legichart/models"
)

// Config holds all configuration for the application
type Config struct {
	ForgeBaseURL   string
	Organization   string
	RateLimitDelay time.Duration
	Retries        int
	RepoPageSize   int
	CommitPageSize int
	HTTPTimeout    time.Duration

	DataPath   string
	OutputPath string

	Granularity models.Granularity
	SortPolicy  models.SortPolicy
	Strategy    string

	ArchiveDSN string
	LogLevel   string
}

// Render strategies
const (
	StrategySVG    = "svg"
	StrategyBlocks = "blocks"
	StrategyKagi   = "kagi"
)

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

// Load loads configuration from environment variables and an optional .env
// file, applying defaults matching the public git.tricoteuses.fr forge.
func (c *Config) Load() error {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Read .env file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetDefault("FORGE_BASE_URL", "https://git.tricoteuses.fr/api/v1")
	viper.SetDefault("FORGE_ORG", "codes")
	viper.SetDefault("RATE_LIMIT_DELAY", "300ms")
	viper.SetDefault("RETRIES", 3)
	viper.SetDefault("REPO_PAGE_SIZE", 50)
	viper.SetDefault("COMMIT_PAGE_SIZE", 100)
	viper.SetDefault("HTTP_TIMEOUT", "30s")
	viper.SetDefault("DATA_PATH", "docs/data/codes_data.json")
	viper.SetDefault("OUTPUT_PATH", "docs/index.html")
	viper.SetDefault("BUCKET_GRANULARITY", string(models.ByMonth))
	viper.SetDefault("SORT_POLICY", string(models.SortByVolume))
	viper.SetDefault("RENDER_STRATEGY", StrategySVG)
	viper.SetDefault("LOG_LEVEL", "info")

	c.ForgeBaseURL = viper.GetString("FORGE_BASE_URL")
	if c.ForgeBaseURL == "" {
		return fmt.Errorf("FORGE_BASE_URL is required")
	}

	c.Organization = viper.GetString("FORGE_ORG")
	if c.Organization == "" {
		return fmt.Errorf("FORGE_ORG is required")
	}

	c.RateLimitDelay = viper.GetDuration("RATE_LIMIT_DELAY")
	c.Retries = viper.GetInt("RETRIES")
	if c.Retries < 1 {
		return fmt.Errorf("RETRIES must be at least 1")
	}

	c.RepoPageSize = viper.GetInt("REPO_PAGE_SIZE")
	c.CommitPageSize = viper.GetInt("COMMIT_PAGE_SIZE")
	c.HTTPTimeout = viper.GetDuration("HTTP_TIMEOUT")

	c.DataPath = viper.GetString("DATA_PATH")
	c.OutputPath = viper.GetString("OUTPUT_PATH")

	c.Granularity = models.Granularity(viper.GetString("BUCKET_GRANULARITY"))
	if !c.Granularity.Valid() {
		return fmt.Errorf("invalid BUCKET_GRANULARITY %q: must be month or year", c.Granularity)
	}

	c.SortPolicy = models.SortPolicy(viper.GetString("SORT_POLICY"))
	if !c.SortPolicy.Valid() {
		return fmt.Errorf("invalid SORT_POLICY %q: must be volume or net", c.SortPolicy)
	}

	c.Strategy = viper.GetString("RENDER_STRATEGY")
	switch c.Strategy {
	case StrategySVG, StrategyBlocks, StrategyKagi:
	default:
		return fmt.Errorf("invalid RENDER_STRATEGY %q: must be svg, blocks or kagi", c.Strategy)
	}

	c.ArchiveDSN = viper.GetString("ARCHIVE_DSN")
	c.LogLevel = viper.GetString("LOG_LEVEL")

	return nil
}
