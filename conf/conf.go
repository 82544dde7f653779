// Package conf loads the service configuration from file and environment.
// Files are looked up as accounthub.yaml in the working directory, ./conf and
// /etc/accounthub; every key can be overridden with ACCOUNTHUB_* environment
// variables.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/accounthub/accounthub/internal/log"
	"github.com/accounthub/accounthub/internal/metrics"
	"github.com/accounthub/accounthub/internal/server"
	"github.com/accounthub/accounthub/internal/server/biz"
	"github.com/accounthub/accounthub/internal/server/db"
)

type Config struct {
	APIServer server.Config  `conf:"server" yaml:"server" json:"server"`
	DB        db.Config      `conf:"db" yaml:"db" json:"db"`
	Log       log.Config     `conf:"log" yaml:"log" json:"log"`
	Auth      biz.AuthConfig `conf:"auth" yaml:"auth" json:"auth"`
	Metrics   metrics.Config `conf:"metrics" yaml:"metrics" json:"metrics"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("accounthub")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./conf")
	v.AddConfigPath("/etc/accounthub")

	v.SetEnvPrefix("ACCOUNTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config

	err = v.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.name", "accounthub")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.trace.trace_header", "X-Trace-Id")

	v.SetDefault("db.dsn", "postgres://localhost:5432/accounthub")
	v.SetDefault("db.max_conns", 10)

	v.SetDefault("log.name", "accounthub")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.exporter", "stdout")
	v.SetDefault("metrics.interval", 30*time.Second)
}
