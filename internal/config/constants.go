package config

import "time"

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = ".ronin"
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = "config.yaml"
	// DefaultStorageFileName holds the persisted refresh token and device id.
	DefaultStorageFileName = "storage.json"
	// DefaultLogFileName is the default client log file name.
	DefaultLogFileName = "ronin.log"

	// DefaultBaseURL is the default API base URL.
	DefaultBaseURL = "http://localhost:8080/api"
	// DefaultAPIVersion is sent as the client and API version.
	DefaultAPIVersion = "1.0.0"
	// DefaultDeviceType is the default x-device-type header.
	DefaultDeviceType = "desktop"
	// DefaultRefreshPath is the token renewal endpoint.
	DefaultRefreshPath = "/refresh"
	// DefaultTimeout bounds each API call.
	DefaultTimeout = 30 * time.Second
	// DefaultLanding is the route a login lands on.
	DefaultLanding = "lobby"
)
