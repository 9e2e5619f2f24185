package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"seoforge/internal/config"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and publish content now",
	Long: `Run the content pipeline immediately. With --website the given
website runs end-to-end regardless of its schedule; without it, every
due website is processed once.

Examples:
  seoforge generate
  seoforge generate --website 2f5e8a10-9c44-4b7e-b1da-07f2e9a31c55`,
	RunE: func(cmd *cobra.Command, args []string) error {
		websiteID, _ := cmd.Flags().GetString("website")
		return runGenerate(cmd, websiteID)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("website", "", "website ID to run regardless of schedule")
}

func runGenerate(cmd *cobra.Command, websiteID string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	sched, err := buildScheduler(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if websiteID != "" {
		outcome, err := sched.RunWebsite(ctx, websiteID)
		if err != nil {
			return err
		}
		if !outcome.Success {
			fmt.Printf("❌ No article published: %s\n", outcome.Message)
			return nil
		}
		fmt.Printf("✅ Published %q (slug: %s, SEO score: %d, via %s)\n",
			outcome.ArticleTitle, outcome.ArticleSlug, outcome.SEOScore, outcome.APIUsed)
		return nil
	}

	processed, err := sched.Tick(ctx, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("✅ Tick completed: %d website(s) published\n", processed)
	return nil
}
