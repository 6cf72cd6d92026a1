package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/julienpequegnot/autoblogger/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize autoblogger configuration",
	Long: `Creates a .env template in the current directory and
~/.autoblogger/config.yaml with the default settings.`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing .env file")
}

func runInit(cmd *cobra.Command, args []string) error {
	err := config.WriteEnvTemplate(config.EnvFile, initForce)
	switch {
	case errors.Is(err, config.ErrEnvExists):
		fmt.Println(warnStyle.Render(fmt.Sprintf("%s already exists, leaving it untouched (use --force to overwrite)", config.EnvFile)))
	case err != nil:
		return fmt.Errorf("failed to write %s: %w", config.EnvFile, err)
	default:
		fmt.Printf("Created %s\n", config.EnvFile)
	}

	dir := config.Dir()
	if err := config.Save(config.Default()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("Created config at %s/config.yaml\n", dir)

	fmt.Println("\n" + successStyle.Render("Autoblogger initialized!") + " Next steps:")
	fmt.Println("  1. Set OPENAI_API_KEY in .env")
	fmt.Println("  2. autoblogger generate \"Your topic\" -o post.md")

	return nil
}
