package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seoforge/internal/config"
	"seoforge/internal/core"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a website and build its content profile",
	Long: `Crawl a site's homepage and navigation pages and derive its niche,
themes, and keywords. With --website the scan is persisted to the
website's profile; with --domain nothing is saved (preview mode).

Examples:
  seoforge scan --website 2f5e8a10-9c44-4b7e-b1da-07f2e9a31c55
  seoforge scan --domain example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		websiteID, _ := cmd.Flags().GetString("website")
		domain, _ := cmd.Flags().GetString("domain")
		if websiteID == "" && domain == "" {
			return fmt.Errorf("one of --website or --domain is required")
		}
		return runScan(cmd, websiteID, domain)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("website", "", "website ID to scan and persist")
	scanCmd.Flags().String("domain", "", "bare domain to preview without saving")
}

func runScan(cmd *cobra.Command, websiteID, domain string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	sched, err := buildScheduler(cfg)
	if err != nil {
		return err
	}

	var scan *core.WebsiteScan
	if websiteID != "" {
		scan, err = sched.ScanWebsite(cmd.Context(), websiteID)
	} else {
		scan, err = sched.PreviewScan(cmd.Context(), domain)
	}
	if err != nil {
		return err
	}

	printScan(scan)
	return nil
}

func printScan(scan *core.WebsiteScan) {
	fmt.Printf("✅ Scanned %d page(s)\n", scan.PagesScanned)
	if scan.HomepageTitle != "" {
		fmt.Printf("Title:    %s\n", scan.HomepageTitle)
	}
	if scan.NicheDescription != "" {
		fmt.Printf("Niche:    %s\n", scan.NicheDescription)
	}
	if len(scan.ContentThemes) > 0 {
		fmt.Printf("Themes:   %s\n", strings.Join(scan.ContentThemes, ", "))
	}
	if len(scan.MainKeywords) > 0 {
		keywords := scan.MainKeywords
		if len(keywords) > 15 {
			keywords = keywords[:15]
		}
		fmt.Printf("Keywords: %s\n", strings.Join(keywords, ", "))
	}
}
