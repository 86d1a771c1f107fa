package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".hyperball"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for hyperball settings.
const envPrefix = "HYPERBALL"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME, and finding
// none there is not an error; defaults are used. A missing explicit
// configPath is an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("engine.log2m", DefaultEngineLog2M)
	viperCfg.SetDefault("engine.h", DefaultEngineH)
	viperCfg.SetDefault("engine.seed", DefaultEngineSeed)
	viperCfg.SetDefault("engine.expected_elements", DefaultEngineExpectedElements)

	viperCfg.SetDefault("watcher.percentage_change", DefaultWatcherPercentageChange)
	viperCfg.SetDefault("watcher.min_node_count", DefaultWatcherMinNodeCount)
	viperCfg.SetDefault("watcher.update_interval_ms", DefaultWatcherUpdateIntervalMs)
	viperCfg.SetDefault("watcher.counter_capacity", DefaultWatcherCounterCapacity)

	viperCfg.SetDefault("server.enabled", DefaultServerEnabled)
	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.format", DefaultLoggingFormat)
}
