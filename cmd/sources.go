package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julienpequegnot/autoblogger/internal/config"
	"github.com/julienpequegnot/autoblogger/internal/research"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List research sources",
	Long:  `Display the MCP servers and RSS/Atom feeds used by --research.`,
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(cfg.Research.Servers) == 0 && len(cfg.Research.Feeds) == 0 {
		fmt.Println("No research sources configured. Set MCP_SERVERS or add a feed with 'autoblogger add <url>'")
		return nil
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf(" %-4s  %-8s  %s", "#", "KIND", "URL")))
	fmt.Println(strings.Repeat("─", 80))

	n := 0
	for i, s := range cfg.Research.Servers {
		n++
		note := ""
		if i >= research.MaxServers {
			note = warnStyle.Render("  (skipped, only the first 3 servers are queried)")
		}
		fmt.Printf(" %s  %s  %s%s\n",
			labelStyle.Render(fmt.Sprintf("%-4d", n)),
			successStyle.Render(fmt.Sprintf("%-8s", "mcp")),
			valueStyle.Render(s),
			note,
		)
	}
	for _, f := range cfg.Research.Feeds {
		n++
		fmt.Printf(" %s  %s  %s\n",
			labelStyle.Render(fmt.Sprintf("%-4d", n)),
			successStyle.Render(fmt.Sprintf("%-8s", "feed")),
			valueStyle.Render(f),
		)
	}

	return nil
}
