// Package config loads lantern's own settings. Everything here configures the
// launcher, never the blueprint: the blueprint stays fixed apart from its
// manifest file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Docker    DockerConfig    `mapstructure:"docker"`
	Blueprint BlueprintConfig `mapstructure:"blueprint"`
}

type ServerConfig struct {
	Listen     string `mapstructure:"listen"`
	BaseDomain string `mapstructure:"base_domain"`
}

type DockerConfig struct {
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

type BlueprintConfig struct {
	// Manifest is the path to an optional blueprint manifest; when the file
	// is absent the stock blueprint is used as-is.
	Manifest string `mapstructure:"manifest"`
}

// Load reads lantern.yaml from the working directory (when present) and
// LANTERN_* environment variables, on top of the defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.listen", ":3000")
	v.SetDefault("server.base_domain", "localhost")
	v.SetDefault("docker.stop_timeout", 10*time.Second)
	v.SetDefault("blueprint.manifest", "blueprint.yaml")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("lantern")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LANTERN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
