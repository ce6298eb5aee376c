package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pkt.systems/ronin"
)

// NewRootCommand builds the root CLI command.
func NewRootCommand(loader *ronin.Loader) *cobra.Command {
	var configFile string
	var baseURL string
	var storageFile string
	var metrics bool

	setDefaults(loader.Viper())

	cmd := &cobra.Command{
		Use:   "ronin",
		Short: "Ronin game client session and navigation shell",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if configFile != "" {
				loader.SetConfigFile(configFile)
			}
			flags := cmd.Flags()
			v := loader.Viper()
			if flags.Changed("base-url") {
				v.Set("api.base_url", baseURL)
			}
			if flags.Changed("storage-file") {
				v.Set("client.storage_file", storageFile)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path")
	flags.StringVar(&baseURL, "base-url", ronin.DefaultBaseURL, "API base URL (overrides config)")
	flags.StringVar(&storageFile, "storage-file", ronin.DefaultStoragePath(), "path to durable client storage")
	flags.BoolVar(&metrics, "metrics", false, "print gateway request and renewal counters on exit")

	cmd.AddCommand(NewBootstrapCommand())
	cmd.AddCommand(NewLoginCommand(loader))
	cmd.AddCommand(NewLogoutCommand(loader))
	cmd.AddCommand(NewRegisterCommand(loader))
	cmd.AddCommand(NewDeactivateCommand(loader))
	cmd.AddCommand(NewProfileCommand(loader))
	cmd.AddCommand(NewRoutesCommand(loader))
	cmd.AddCommand(NewNavigateCommand(loader))

	return cmd
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", ronin.DefaultBaseURL)
	v.SetDefault("api.bearer", "")
	v.SetDefault("api.salt", "")
	v.SetDefault("api.version", ronin.DefaultAPIVersion)
	v.SetDefault("api.platform", ronin.DefaultPlatform())
	v.SetDefault("api.device_type", ronin.DefaultDeviceType)
	v.SetDefault("api.device_name", ronin.DefaultDeviceName())
	v.SetDefault("api.refresh_path", ronin.DefaultRefreshPath)
	v.SetDefault("api.timeout", ronin.DefaultTimeout)
	v.SetDefault("client.storage_file", ronin.DefaultStoragePath())
	v.SetDefault("client.log_file", ronin.DefaultLogPath())
	v.SetDefault("client.ca_file", "")
	v.SetDefault("client.landing", ronin.DefaultLanding)
}
