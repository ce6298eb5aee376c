package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the ronin client.
type Config struct {
	API    APIConfig     `mapstructure:"api" yaml:"api"`
	Client ClientConfig  `mapstructure:"client" yaml:"client"`
	Routes []RouteConfig `mapstructure:"routes" yaml:"routes,omitempty"`
}

// APIConfig configures the backend connection and the request headers.
type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Bearer      string        `mapstructure:"bearer" yaml:"bearer"`
	Salt        string        `mapstructure:"salt" yaml:"salt"`
	Version     string        `mapstructure:"version" yaml:"version"`
	Platform    string        `mapstructure:"platform" yaml:"platform"`
	DeviceType  string        `mapstructure:"device_type" yaml:"device_type"`
	DeviceName  string        `mapstructure:"device_name" yaml:"device_name"`
	RefreshPath string        `mapstructure:"refresh_path" yaml:"refresh_path"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ClientConfig configures local client state.
type ClientConfig struct {
	StorageFile string `mapstructure:"storage_file" yaml:"storage_file"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	CAFile      string `mapstructure:"ca_file" yaml:"ca_file"`
	Landing     string `mapstructure:"landing" yaml:"landing"`
}

// RouteConfig is the file form of a route definition.
type RouteConfig struct {
	Route string   `mapstructure:"route" yaml:"route"`
	Kind  string   `mapstructure:"kind" yaml:"kind"`
	Flags []string `mapstructure:"flags" yaml:"flags,omitempty"`
	Scene string   `mapstructure:"scene" yaml:"scene,omitempty"`
	Asset string   `mapstructure:"asset" yaml:"asset,omitempty"`
}

// Loader wraps Viper configuration loading for ronin.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader initializes a Loader with standard defaults.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("RONIN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/ronin")
	v.AddConfigPath("$HOME/" + DefaultConfigDirName)

	return &Loader{v: v}
}

// Viper exposes the underlying Viper instance for flag binding and defaults.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = strings.TrimSpace(path)
}

// ConfigFileUsed returns the file the last read loaded, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// ReadInConfig reads configuration from file if available.
func (l *Loader) ReadInConfig() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads configuration and unmarshals it into a Config struct.
func (l *Loader) Load() (Config, error) {
	if err := l.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
