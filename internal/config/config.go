// Package config loads board settings from an optional YAML file and
// BOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Running struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"running"`
	Coordinator struct {
		URL    string `mapstructure:"url"`
		Room   string `mapstructure:"room"`
		Client string `mapstructure:"client"`
	} `mapstructure:"coordinator"`
	Redis struct {
		Addr        string        `mapstructure:"addr"`
		Password    string        `mapstructure:"password"`
		PresenceTTL time.Duration `mapstructure:"presence_ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers   []string `mapstructure:"brokers"`
		Topic     string   `mapstructure:"topic"`
		QueueSize int      `mapstructure:"queue_size"`
		Workers   int      `mapstructure:"workers"`
		MaxRetry  int      `mapstructure:"max_retry"`
	} `mapstructure:"kafka"`
	MDNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Instance string `mapstructure:"instance"`
	} `mapstructure:"mdns"`
	Canvas struct {
		Width  int     `mapstructure:"width"`
		Height int     `mapstructure:"height"`
		DPR    float64 `mapstructure:"dpr"`
	} `mapstructure:"canvas"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Every key gets a default so that BOARD_* variables are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("running.port", 8888)
	v.SetDefault("coordinator.url", "")
	v.SetDefault("coordinator.room", "default")
	v.SetDefault("coordinator.client", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.presence_ttl", 2*time.Minute)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "board-events")
	v.SetDefault("kafka.queue_size", 1024)
	v.SetDefault("kafka.workers", 2)
	v.SetDefault("kafka.max_retry", 3)
	v.SetDefault("mdns.enabled", true)
	v.SetDefault("mdns.instance", "SharedBoard")
	v.SetDefault("canvas.width", 1280)
	v.SetDefault("canvas.height", 800)
	v.SetDefault("canvas.dpr", 1.0)
	v.SetDefault("log.level", "info")
}

// Load reads path when given, otherwise board.yaml from ./config or the
// working directory. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("board")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Running.Port <= 0 || cfg.Running.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Running.Port)
	}
	return &cfg, nil
}
