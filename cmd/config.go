package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kartoza/kartoza-loudness/internal/config"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration after the config file, .env and LOUDNESS_*
environment variables have been applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(grayStyle.Render("# " + configFilePath()))
		fmt.Println(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		cfg := config.DefaultConfig()
		var err error
		if configPath != "" {
			err = config.SaveTo(&cfg, configPath)
		} else {
			err = config.Save(&cfg)
		}
		if err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("%s Wrote %s\n", greenStyle.Render("✓"), path)
		return nil
	},
}

func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return config.GetConfigPath()
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
