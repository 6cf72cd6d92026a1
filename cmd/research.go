package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/julienpequegnot/autoblogger/internal/config"
	"github.com/julienpequegnot/autoblogger/internal/research"
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Preview the reference material gathered for a topic",
	Long:  `Queries the configured MCP servers and feeds and prints the reference block that --research would add to the prompt.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	agg := newAggregator(cfg, slog.Default())
	if !agg.Enabled() {
		fmt.Println("No research sources configured. Set MCP_SERVERS or add a feed with 'autoblogger add <url>'")
		return nil
	}

	refs := agg.Gather(cmd.Context(), args[0])
	if len(refs) == 0 {
		fmt.Println(warnStyle.Render("No reference material found."))
		return nil
	}

	for i, ref := range refs {
		fmt.Printf("%s %s\n", labelStyle.Render(fmt.Sprintf("Source %d:", i+1)), valueStyle.Render(ref.Source))
	}
	fmt.Println(divider())
	fmt.Print(research.FormatReferences(refs))
	fmt.Println(divider())
	return nil
}
