package config

import (
	"os"
	"runtime"
)

// DefaultConfig returns the default configuration values.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:     DefaultBaseURL,
			Version:     DefaultAPIVersion,
			Platform:    DefaultPlatform(),
			DeviceType:  DefaultDeviceType,
			DeviceName:  DefaultDeviceName(),
			RefreshPath: DefaultRefreshPath,
			Timeout:     DefaultTimeout,
		},
		Client: ClientConfig{
			StorageFile: DefaultStoragePath(),
			LogFile:     DefaultLogPath(),
			Landing:     DefaultLanding,
		},
		Routes: DefaultRoutes(),
	}
}

// DefaultPlatform returns the x-device-platform value for this build.
func DefaultPlatform() string {
	return runtime.GOOS
}

// DefaultDeviceName returns the host name, or "unknown".
func DefaultDeviceName() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
