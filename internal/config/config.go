// Package config provides unified configuration loading for the selection engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

// Config holds all configuration for the selection engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Aliases       map[string]string   `yaml:"aliases"`
	Filters       FilterConfig        `yaml:"filters"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Ranking       RankingConfig       `yaml:"ranking"`
	Export        ExportConfig        `yaml:"export"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings for the upload API.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
}

// FilterConfig holds the exclusion filter settings.
type FilterConfig struct {
	BlockBrands   []string `yaml:"block_brands"`
	PriceFloor    float64  `yaml:"price_floor"`    // exclusive: Price must be > floor
	WeightCeiling float64  `yaml:"weight_ceiling"` // exclusive, grams: Weight must be < ceiling
}

// ScoringConfig holds the TPI scoring weights.
type ScoringConfig struct {
	BaseScore          int     `yaml:"base_score"`
	PairOverlapBonus   int     `yaml:"pair_overlap_bonus"`
	TripleOverlapBonus int     `yaml:"triple_overlap_bonus"`
	SalesThreshold     float64 `yaml:"sales_threshold"`
	SalesBonus         int     `yaml:"sales_bonus"`
	PriceBandLow       float64 `yaml:"price_band_low"`
	PriceBandHigh      float64 `yaml:"price_band_high"`
	PriceBandBonus     int     `yaml:"price_band_bonus"`
	LowPriceCutoff     float64 `yaml:"low_price_cutoff"`
	LowPricePenalty    int     `yaml:"low_price_penalty"`
	GrowthThreshold    float64 `yaml:"growth_threshold"` // percentage points
	GrowthBonus        int     `yaml:"growth_bonus"`
}

// RankingConfig holds ranking and URL derivation settings.
type RankingConfig struct {
	TopN          int    `yaml:"top_n"`
	AmazonBaseURL string `yaml:"amazon_base_url"`
}

// ExportConfig holds result export settings.
type ExportConfig struct {
	OutputDir    string `yaml:"output_dir"`
	WorkbookName string `yaml:"workbook_name"`
	SheetName    string `yaml:"sheet_name"`
	ChartsName   string `yaml:"charts_name"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the stock selection profile: seller-sprite export
// headers, the six blocked incumbent brands, $8 price floor, 1000 g weight
// ceiling, top 30.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     60 * time.Second,
			IdleTimeout:      120 * time.Second,
			RequestTimeout:   60 * time.Second,
			GracefulShutdown: 10 * time.Second,
			MaxUploadBytes:   64 << 20,
		},
		Aliases: map[string]string{
			pipeline.FieldASIN:          "ASIN",
			pipeline.FieldTitle:         "标题",
			pipeline.FieldPrice:         "价格",
			pipeline.FieldMonthlySales:  "月销量",
			pipeline.FieldSalesGrowth:   "近30天销量增长率",
			pipeline.FieldRevenueChange: "月销售额增长率",
			pipeline.FieldPriceChange:   "价格变化",
			pipeline.FieldRatings:       "评分数",
			pipeline.FieldLaunchDate:    "上架时间",
			pipeline.FieldBrand:         "品牌",
			pipeline.FieldWeight:        "重量",
			pipeline.FieldImageURL:      "主图链接",
			pipeline.FieldSKU:           "SKU",
		},
		Filters: FilterConfig{
			BlockBrands:   []string{"OXO", "Ninja", "KitchenAid", "Keurig", "AmazonBasics", "Cuisinart"},
			PriceFloor:    8,
			WeightCeiling: 1000,
		},
		Scoring: ScoringConfig{
			BaseScore:          50,
			PairOverlapBonus:   30,
			TripleOverlapBonus: 50,
			SalesThreshold:     500,
			SalesBonus:         10,
			PriceBandLow:       20,
			PriceBandHigh:      40,
			PriceBandBonus:     10,
			LowPriceCutoff:     15,
			LowPricePenalty:    10,
			GrowthThreshold:    50,
			GrowthBonus:        10,
		},
		Ranking: RankingConfig{
			TopN:          30,
			AmazonBaseURL: "https://www.amazon.com/dp/",
		},
		Export: ExportConfig{
			OutputDir:    "outputs",
			WorkbookName: "TEMU_Top30_Selection.xlsx",
			SheetName:    "Top30",
			ChartsName:   "tpi_charts.html",
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if len(c.Aliases) == 0 {
		return fmt.Errorf("aliases must not be empty")
	}

	if c.Aliases[pipeline.FieldASIN] == "" {
		return fmt.Errorf("aliases must map the %s identifier field", pipeline.FieldASIN)
	}

	if c.Ranking.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1")
	}

	if c.Filters.PriceFloor < 0 {
		return fmt.Errorf("price_floor must not be negative")
	}

	if c.Filters.WeightCeiling <= 0 {
		return fmt.Errorf("weight_ceiling must be positive")
	}

	if c.Scoring.PriceBandLow > c.Scoring.PriceBandHigh {
		return fmt.Errorf("price band is inverted: low %.2f > high %.2f",
			c.Scoring.PriceBandLow, c.Scoring.PriceBandHigh)
	}

	return nil
}

// PipelineOptions maps the configuration onto the pipeline's option set.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Aliases:       c.Aliases,
		BlockBrands:   c.Filters.BlockBrands,
		PriceFloor:    c.Filters.PriceFloor,
		WeightCeiling: c.Filters.WeightCeiling,
		TopN:          c.Ranking.TopN,
		AmazonBaseURL: c.Ranking.AmazonBaseURL,
		Scoring: pipeline.ScoreWeights{
			Base:               c.Scoring.BaseScore,
			PairOverlapBonus:   c.Scoring.PairOverlapBonus,
			TripleOverlapBonus: c.Scoring.TripleOverlapBonus,
			SalesThreshold:     c.Scoring.SalesThreshold,
			SalesBonus:         c.Scoring.SalesBonus,
			PriceBandLow:       c.Scoring.PriceBandLow,
			PriceBandHigh:      c.Scoring.PriceBandHigh,
			PriceBandBonus:     c.Scoring.PriceBandBonus,
			LowPriceCutoff:     c.Scoring.LowPriceCutoff,
			LowPricePenalty:    c.Scoring.LowPricePenalty,
			GrowthThreshold:    c.Scoring.GrowthThreshold,
			GrowthBonus:        c.Scoring.GrowthBonus,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Export.OutputDir = v
	}

	if v := os.Getenv("TOP_N"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Ranking.TopN = n
		}
	}
}
