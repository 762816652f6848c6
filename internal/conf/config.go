package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Search SearchConfig `mapstructure:"search"`
	Log    LogConfig    `mapstructure:"log"`
}

type SearchConfig struct {
	Endpoint              string        `mapstructure:"endpoint"`
	Locale                string        `mapstructure:"locale"`
	MaxResultsPerProvider int           `mapstructure:"max_results_per_provider"`
	ProviderTimeout       time.Duration `mapstructure:"provider_timeout"`
	MaxFrameBuffer        int           `mapstructure:"max_frame_buffer"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("search.endpoint", "http://localhost:8080/api/v1/metadata/search")
	viper.SetDefault("search.locale", "en")
	viper.SetDefault("search.max_results_per_provider", 10)
	viper.SetDefault("search.provider_timeout", "60s")
	viper.SetDefault("search.max_frame_buffer", 1<<20)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "console")
}
