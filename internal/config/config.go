// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port           int `mapstructure:"port"`
	UpdateInterval int `mapstructure:"update_interval"` // minutes, 0 disables the scheduled update
	MaxAuthors     int `mapstructure:"max_authors"`     // per update run, 0 means unlimited
	Database       struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Mirror struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"mirror"`
	Fetch struct {
		DelayMs   int    `mapstructure:"delay_ms"` // minimum delay between requests to one host
		Retries   int    `mapstructure:"retries"`
		UserAgent string `mapstructure:"user_agent"`
	} `mapstructure:"fetch"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")
	viper.AddConfigPath(".") // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// e.g. FFMIRROR_DATABASE_PATH overrides the `database.path` key.
	viper.SetEnvPrefix("FFMIRROR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8365)
	viper.SetDefault("update_interval", 360)
	viper.SetDefault("max_authors", 0)
	viper.SetDefault("database.path", "./ffmeta.sqlite")
	viper.SetDefault("mirror.path", "./mirror")
	viper.SetDefault("fetch.delay_ms", 2000)
	viper.SetDefault("fetch.retries", 3)
	viper.SetDefault("fetch.user_agent",
		"Mozilla/5.0 (X11; Fedora; Linux x86_64; rv:76.0) Gecko/20100101 Firefox/76.0")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Watch re-reads config.yml whenever it changes on disk and passes the
// updated configuration to onChange. Settings that are read once at
// startup (port, database path) still require a restart.
func Watch(onChange func(*Config)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("Config file changed: %s", e.Name)
		var config Config
		if err := viper.Unmarshal(&config); err != nil {
			log.Printf("Warning: ignoring invalid config change: %v", err)
			return
		}
		onChange(&config)
	})
	viper.WatchConfig()
}
