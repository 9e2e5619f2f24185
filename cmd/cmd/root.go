package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seoforge",
	Short: "seoforge generates and publishes SEO content for tenant websites",
	Long: `seoforge is the automation service behind a multi-tenant content
platform: it scans each tenant's website, discovers article topics,
generates optimized content through OpenAI or Anthropic, scores it, and
publishes it straight into the tenant's own article table.

Run 'seoforge serve' to start the HTTP trigger surface plus the
scheduling loop, or use the one-shot commands (generate, discover,
scan) for manual runs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.seoforge.yaml)")
}
