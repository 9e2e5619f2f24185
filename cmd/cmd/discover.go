package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"seoforge/internal/config"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover and save article topics for a website",
	Long: `Run bulk topic discovery for one website: Google Custom Search
queries built from the site's scan profile (when configured) or AI
suggestions grounded in the site's niche. Discovered topics are saved
to the topic queue.

Example:
  seoforge discover --website 2f5e8a10-9c44-4b7e-b1da-07f2e9a31c55 --count 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		websiteID, _ := cmd.Flags().GetString("website")
		count, _ := cmd.Flags().GetInt("count")
		if websiteID == "" {
			return fmt.Errorf("--website is required")
		}
		return runDiscover(cmd, websiteID, count)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().String("website", "", "website ID to discover topics for")
	discoverCmd.Flags().Int("count", 0, "number of topics to request (default 5)")
}

func runDiscover(cmd *cobra.Command, websiteID string, count int) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	sched, err := buildScheduler(cfg)
	if err != nil {
		return err
	}

	topics, err := sched.DiscoverTopics(cmd.Context(), websiteID, count)
	if err != nil {
		return err
	}

	if len(topics) == 0 {
		fmt.Println("No new topics discovered")
		return nil
	}
	fmt.Printf("✅ Discovered %d topic(s):\n", len(topics))
	for _, topic := range topics {
		fmt.Printf("  • %s [%s, %s]\n", topic.Title, topic.Source, topic.SearchIntent)
	}
	return nil
}
