package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	EvaluationCacheTTL     time.Duration
	EvaluationTimeout      time.Duration
	WeightCorrectness      float64
	WeightEngagement       float64
	WeightTopicCoverage    float64
	TargetTotal            float64
	EngagementAgentEnabled bool
	MaxAttachmentMB        int
	AIProvider             string
	AIModel                string
	OpenAIAPIKey           string
	AnthropicAPIKey        string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDULENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduLens API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "edulens/lectures")
	v.SetDefault("evaluation.cache_ttl", "10m")
	v.SetDefault("evaluation.timeout", "60s")
	v.SetDefault("evaluation.weight_correctness", 30.0)
	v.SetDefault("evaluation.weight_engagement", 30.0)
	v.SetDefault("evaluation.weight_topic_coverage", 30.0)
	v.SetDefault("evaluation.target_total", 100.0)
	v.SetDefault("evaluation.engagement_agent", false)
	v.SetDefault("max_attachment_mb", 10)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")

	ttl, err := time.ParseDuration(v.GetString("evaluation.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid evaluation cache ttl: %w", err)
	}

	timeout, err := time.ParseDuration(v.GetString("evaluation.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid evaluation timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		EvaluationCacheTTL:     ttl,
		EvaluationTimeout:      timeout,
		WeightCorrectness:      v.GetFloat64("evaluation.weight_correctness"),
		WeightEngagement:       v.GetFloat64("evaluation.weight_engagement"),
		WeightTopicCoverage:    v.GetFloat64("evaluation.weight_topic_coverage"),
		TargetTotal:            v.GetFloat64("evaluation.target_total"),
		EngagementAgentEnabled: v.GetBool("evaluation.engagement_agent"),
		MaxAttachmentMB:        v.GetInt("max_attachment_mb"),
		AIProvider:             strings.ToLower(v.GetString("ai.provider")),
		AIModel:                v.GetString("ai.model"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		AnthropicAPIKey:        v.GetString("anthropic_api_key"),
	}

	if cfg.WeightCorrectness < 0 || cfg.WeightEngagement < 0 || cfg.WeightTopicCoverage < 0 {
		return Config{}, fmt.Errorf("evaluation weights must not be negative")
	}
	if cfg.WeightCorrectness+cfg.WeightEngagement+cfg.WeightTopicCoverage == 0 {
		return Config{}, fmt.Errorf("at least one evaluation weight must be positive")
	}
	if cfg.TargetTotal <= 0 {
		return Config{}, fmt.Errorf("evaluation target total must be positive")
	}
	if cfg.MaxAttachmentMB <= 0 {
		cfg.MaxAttachmentMB = 10
	}

	return cfg, nil
}
