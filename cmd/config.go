package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/julienpequegnot/autoblogger/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  `Prints the configuration after merging config.yaml, .env and the environment. Secrets are masked.`,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	fmt.Println(titleStyle.Render("Configuration") + labelStyle.Render(" ("+config.Dir()+")"))
	fmt.Print(string(data))

	if err := cfg.Validate(); err != nil {
		fmt.Println(warnStyle.Render("Warning: " + err.Error()))
	}
	return nil
}
