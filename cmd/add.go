package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/julienpequegnot/autoblogger/internal/config"
	"github.com/julienpequegnot/autoblogger/internal/feed"
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a blog or RSS feed as research material",
	Long: `Add a blog URL or RSS/Atom feed URL to the research feeds in config.yaml.
For a blog URL the feed is discovered from the page.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var addNoDiscover bool

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolVar(&addNoDiscover, "no-discover", false, "Store the URL as given without feed discovery")
}

func runAdd(cmd *cobra.Command, args []string) error {
	siteURL := args[0]

	if !strings.HasPrefix(siteURL, "http") {
		siteURL = "https://" + siteURL
	}
	if _, err := url.Parse(siteURL); err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	feedURL := siteURL
	if !addNoDiscover {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fetcher := feed.NewFetcher(cfg.Timeout(), cfg.Fetch.UserAgent)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		fmt.Printf("Checking %s...\n", siteURL)
		if _, err := fetcher.FetchFeed(ctx, siteURL); err != nil {
			discovered, derr := feed.DiscoverFeed(ctx, fetcher.Client(), siteURL)
			if derr != nil {
				fmt.Println(warnStyle.Render(fmt.Sprintf("Warning: %v", derr)))
				fmt.Println("Adding the URL as given - research will try discovery again at run time")
			} else {
				feedURL = discovered
				fmt.Printf("Found feed: %s\n", feedURL)
			}
		}
	}

	added, err := config.AddFeed(feedURL)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("feed already configured: %s", feedURL)
	}

	fmt.Printf("\nAdded research feed: %s\n", valueStyle.Render(feedURL))
	fmt.Println("\nRun 'autoblogger generate <topic> --research' to use it")

	return nil
}
