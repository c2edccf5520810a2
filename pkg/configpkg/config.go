// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress    string        `mapstructure:"SERVER_ADDRESS"`
	Environment      string        `mapstructure:"GO_ENV"`
	StoreBackend     string        `mapstructure:"STORE_BACKEND"` // "redis" or "file"
	RedisAddress     string        `mapstructure:"REDIS_ADDRESS"`
	RedisPingTimeout time.Duration `mapstructure:"REDIS_PING_TIMEOUT"`
	StateFilePath    string        `mapstructure:"STATE_FILE_PATH"`
	TicketUnit       string        `mapstructure:"TICKET_UNIT"`
	MinPoolDuration  time.Duration `mapstructure:"MIN_POOL_DURATION"`
	MaxPoolDuration  time.Duration `mapstructure:"MAX_POOL_DURATION"`
	DrawRetryBackoff time.Duration `mapstructure:"DRAW_RETRY_BACKOFF"`
}

// Load reads configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
