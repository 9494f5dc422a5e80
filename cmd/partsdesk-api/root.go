package main

import (
	"github.com/spf13/cobra"

	"github.com/PabloGalante/partsdesk/internal/config"
)

var (
	configPath string
	portFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "partsdesk-api",
	Short:         "PartsDesk - refrigerator and dishwasher parts support agent",
	Long:          `PartsDesk answers part, compatibility, installation, troubleshooting and order questions over HTTP or a local chat prompt.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to $PARTSDESK_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&portFlag, "port", "", "HTTP port, overrides the config file and environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config named by --config, falling back to
// PARTSDESK_CONFIG, and applies command line overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}
	return cfg, nil
}
