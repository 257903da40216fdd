// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Common errors
var (
	Err = errors.New("config error")
)

// Config represents the deployment settings. Every component receives this
// struct explicitly; there are no process-wide constants, so one process can
// drive several deployments with different images, containers or hosts.
type Config struct {
	Image        ImageConfig        `mapstructure:"image"`
	Container    ContainerConfig    `mapstructure:"container"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	Local        LocalConfig        `mapstructure:"local"`
	Notification NotificationConfig `mapstructure:"notification"`

	// ConfigFilePath stores the path to the loaded config file (not marshaled from YAML)
	ConfigFilePath string `mapstructure:"-"`
}

// ImageConfig describes the image built and shipped by the deploy pipeline.
type ImageConfig struct {
	Name string `mapstructure:"name"`
	// Tag is the image tag. Empty means "derive from the build context":
	// the short git commit hash when available, otherwise "latest".
	Tag string `mapstructure:"tag"`
	// BuildContext is the directory passed to the engine's build command.
	BuildContext string `mapstructure:"build_context"`
}

// ContainerConfig describes the single named instance per host.
type ContainerConfig struct {
	Name string `mapstructure:"name"`
	// HostPort is published to ContainerPort on the target host.
	HostPort      int `mapstructure:"host_port"`
	ContainerPort int `mapstructure:"container_port"`
}

// RemoteConfig describes the remote host contract.
type RemoteConfig struct {
	// Dir is the directory under the remote user's home holding
	// config/, output/ and data/.
	Dir string `mapstructure:"dir"`
	// ConnectTimeoutSeconds bounds only the initial connectivity probe.
	// Subsequent commands (build, save, transfer, load) run to completion.
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds"`
}

// LocalConfig describes local-run behavior.
type LocalConfig struct {
	// OutputDir is the conventional local output tree, also the default
	// source for import-data.
	OutputDir string `mapstructure:"output_dir"`
	// ConfigFile is the payload configuration file for local runs.
	ConfigFile string `mapstructure:"config_file"`
	// PythonBin is the interpreter used by the host-mode fallback.
	PythonBin string `mapstructure:"python_bin"`
	// SettleSeconds is how long host mode waits before checking that the
	// detached payload process is still alive.
	SettleSeconds int `mapstructure:"settle_seconds"`
	// DatabaseName is the database provisioned by --with-db.
	DatabaseName string `mapstructure:"database_name"`
}

// NotificationConfig contains notification settings.
type NotificationConfig struct {
	ShoutrrURL string `mapstructure:"shoutrrr_url"` // Shoutrrr URL format
	Enabled    bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("ncdeploy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ncdeploy")
		v.AddConfigPath("/etc/ncdeploy")
	}

	setDefaults(v)

	// The settings file is optional: every key has a usable default.
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			configFile := v.ConfigFileUsed()
			if configFile == "" {
				configFile = configPath
			}
			return nil, fmt.Errorf("error reading config file from %s: %w", configFile, err)
		}
	}

	// Environment variable support
	v.SetEnvPrefix("NCDEPLOY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		configFile := v.ConfigFileUsed()
		if configFile == "" {
			configFile = "(using defaults and environment variables)"
		}
		return nil, fmt.Errorf("error unmarshaling config from %s: %w", configFile, err)
	}

	cfg.ConfigFilePath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		configFile := v.ConfigFileUsed()
		if configFile == "" {
			configFile = "(using defaults and environment variables)"
		}
		return nil, fmt.Errorf("config validation failed for %s: %w", configFile, err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Image defaults
	v.SetDefault("image.name", "newscollector")
	v.SetDefault("image.tag", "") // empty = derive from git HEAD, else "latest"
	v.SetDefault("image.build_context", ".")

	// Container defaults
	v.SetDefault("container.name", "newscollector")
	v.SetDefault("container.host_port", 8000)
	v.SetDefault("container.container_port", 8000)

	// Remote defaults
	v.SetDefault("remote.dir", "newscollector")
	v.SetDefault("remote.connect_timeout_seconds", 10)

	// Local defaults
	v.SetDefault("local.output_dir", "output")
	v.SetDefault("local.config_file", "config/config.yaml")
	v.SetDefault("local.python_bin", "python3")
	v.SetDefault("local.settle_seconds", 3)
	v.SetDefault("local.database_name", "newscollector")

	// Notification defaults
	v.SetDefault("notification.shoutrrr_url", "") // Required for AutomaticEnv to work
	v.SetDefault("notification.enabled", false)
}

// Validate ensures all required fields are set and values are within valid ranges.
func (c *Config) Validate() error {
	configSource := c.ConfigFilePath
	if configSource == "" {
		configSource = "(defaults/environment)"
	}

	requiredFields := []struct {
		value   string
		message string
	}{
		{c.Image.Name, "image.name is required in config %s"},
		{c.Image.BuildContext, "image.build_context is required in config %s"},
		{c.Container.Name, "container.name is required in config %s"},
		{c.Remote.Dir, "remote.dir is required in config %s"},
		{c.Local.OutputDir, "local.output_dir is required in config %s"},
		{c.Local.ConfigFile, "local.config_file is required in config %s"},
		{c.Local.PythonBin, "local.python_bin is required in config %s"},
	}

	for _, field := range requiredFields {
		if field.value == "" {
			return fmt.Errorf(field.message, configSource)
		}
	}

	return c.validateRanges(configSource)
}

func (c *Config) validateRanges(configSource string) error {
	if c.Container.HostPort < 1 || c.Container.HostPort > 65535 {
		return fmt.Errorf("container.host_port must be between 1 and 65535, got %d in config %s",
			c.Container.HostPort, configSource)
	}
	if c.Container.ContainerPort < 1 || c.Container.ContainerPort > 65535 {
		return fmt.Errorf("container.container_port must be between 1 and 65535, got %d in config %s",
			c.Container.ContainerPort, configSource)
	}
	if c.Remote.ConnectTimeoutSeconds < 1 || c.Remote.ConnectTimeoutSeconds > 300 {
		return fmt.Errorf("remote.connect_timeout_seconds must be between 1 and 300, got %d in config %s",
			c.Remote.ConnectTimeoutSeconds, configSource)
	}
	if c.Local.SettleSeconds < 1 || c.Local.SettleSeconds > 120 {
		return fmt.Errorf("local.settle_seconds must be between 1 and 120, got %d in config %s",
			c.Local.SettleSeconds, configSource)
	}
	return nil
}

// ImageRef returns the image reference for a resolved tag.
func (c *Config) ImageRef(tag string) string {
	return c.Image.Name + ":" + tag
}

// RemotePath returns a path under the remote deployment directory, anchored
// at the remote user's home the way the run contract expects.
func (c *Config) RemotePath(parts ...string) string {
	p := "~/" + c.Remote.Dir
	for _, part := range parts {
		p += "/" + part
	}
	return p
}
