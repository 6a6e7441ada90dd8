package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	AI       AIConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type StorageConfig struct {
	UploadDir          string
	MaxUploadSize      int64
	MaxFilesPerRequest int
}

type AIConfig struct {
	BaseURL      string
	Path         string
	Model        string
	APIKey       string
	CustomerID   string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	SystemPrompt string
}

type PipelineConfig struct {
	BatchSize       int
	InterBatchDelay time.Duration
}

// DefaultSystemPrompt is used for every analysis request unless the caller
// supplies an override.
const DefaultSystemPrompt = "You are a medical imaging analysis assistant. " +
	"Review the provided medical images and describe notable findings in clear, " +
	"professional language. Do not provide a definitive diagnosis."

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "localhost")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("APP_UPLOAD_DIR", "./uploads/images")
	viper.SetDefault("APP_MAX_UPLOAD_SIZE", 100*1024*1024) // 100MB
	viper.SetDefault("APP_MAX_FILES_PER_REQUEST", 200)
	viper.SetDefault("AI_BASE_URL", "https://oi-server.onrender.com")
	viper.SetDefault("AI_PATH", "/chat/completions")
	viper.SetDefault("AI_MODEL", "openrouter/claude-sonnet-4")
	viper.SetDefault("AI_API_KEY", "")
	viper.SetDefault("AI_CUSTOMER_ID", "")
	viper.SetDefault("AI_TEMPERATURE", 0.1)
	viper.SetDefault("AI_MAX_TOKENS", 4096)
	viper.SetDefault("AI_TIMEOUT", "120s")
	viper.SetDefault("PIPELINE_BATCH_SIZE", 20)
	viper.SetDefault("PIPELINE_INTER_BATCH_DELAY", "2s")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		Storage: StorageConfig{
			UploadDir:          viper.GetString("APP_UPLOAD_DIR"),
			MaxUploadSize:      viper.GetInt64("APP_MAX_UPLOAD_SIZE"),
			MaxFilesPerRequest: viper.GetInt("APP_MAX_FILES_PER_REQUEST"),
		},
		AI: AIConfig{
			BaseURL:      viper.GetString("AI_BASE_URL"),
			Path:         viper.GetString("AI_PATH"),
			Model:        viper.GetString("AI_MODEL"),
			APIKey:       viper.GetString("AI_API_KEY"),
			CustomerID:   viper.GetString("AI_CUSTOMER_ID"),
			Temperature:  viper.GetFloat64("AI_TEMPERATURE"),
			MaxTokens:    viper.GetInt("AI_MAX_TOKENS"),
			Timeout:      viper.GetDuration("AI_TIMEOUT"),
			SystemPrompt: DefaultSystemPrompt,
		},
		Pipeline: PipelineConfig{
			BatchSize:       viper.GetInt("PIPELINE_BATCH_SIZE"),
			InterBatchDelay: viper.GetDuration("PIPELINE_INTER_BATCH_DELAY"),
		},
	}

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", cfg.Storage.UploadDir, err)
	}

	return cfg, nil
}
