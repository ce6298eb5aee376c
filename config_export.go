package ronin

import "pkt.systems/ronin/internal/config"

// Config mirrors the ronin configuration.
type Config = config.Config

// APIConfig configures the backend connection.
type APIConfig = config.APIConfig

// ClientConfig configures local client state.
type ClientConfig = config.ClientConfig

// RouteConfig is one configured route.
type RouteConfig = config.RouteConfig

// Loader wraps configuration loading via Viper.
type Loader = config.Loader

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = config.DefaultConfigDirName
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = config.DefaultConfigFileName
	// DefaultStorageFileName is the default durable storage file name.
	DefaultStorageFileName = config.DefaultStorageFileName
	// DefaultLogFileName is the default client log file name.
	DefaultLogFileName = config.DefaultLogFileName

	// DefaultBaseURL is the default API base URL.
	DefaultBaseURL = config.DefaultBaseURL
	// DefaultAPIVersion is the default client version header.
	DefaultAPIVersion = config.DefaultAPIVersion
	// DefaultDeviceType is the default device type header.
	DefaultDeviceType = config.DefaultDeviceType
	// DefaultRefreshPath is the default token renewal path.
	DefaultRefreshPath = config.DefaultRefreshPath
	// DefaultTimeout is the default per call timeout.
	DefaultTimeout = config.DefaultTimeout
	// DefaultLanding is the default post-login route.
	DefaultLanding = config.DefaultLanding
)

// NewLoader returns a config loader with defaults wired.
func NewLoader() *config.Loader {
	return config.NewLoader()
}

// DefaultConfig returns the default ronin configuration.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// DefaultRoutes returns the built-in route table.
func DefaultRoutes() []RouteConfig {
	return config.DefaultRoutes()
}

// DefaultConfigDir returns the default config directory.
func DefaultConfigDir() string {
	return config.DefaultConfigDir()
}

// DefaultConfigPath returns the default config path.
func DefaultConfigPath() string {
	return config.DefaultConfigPath()
}

// DefaultStoragePath returns the default durable storage path.
func DefaultStoragePath() string {
	return config.DefaultStoragePath()
}

// DefaultLogPath returns the default client log path.
func DefaultLogPath() string {
	return config.DefaultLogPath()
}

// DefaultPlatform returns the default device platform header.
func DefaultPlatform() string {
	return config.DefaultPlatform()
}

// DefaultDeviceName returns the default device name header.
func DefaultDeviceName() string {
	return config.DefaultDeviceName()
}
