package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Output formats for the quote commands.
const (
	outputText = "text"
	outputJSON = "json"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	profile  string
	logLevel string
	output   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "quotify",
		Short: "Quote of the day, cached in batches",
		Long: `quotify keeps a batch of quotations fetched from the quotable API,
caches it for a day and lets you step through it.

Run "quotify serve" for the HTTP API, or use the quote commands directly.
Configuration is read from configs/base.yaml, configs/<profile>.yaml and
APP_* environment variables.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			switch opts.output {
			case outputText, outputJSON:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want %s or %s)", opts.output, outputText, outputJSON)
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.profile, "profile", "p", defaultProfile(), "Config profile (configs/<profile>.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	flags.StringVarP(&opts.output, "output", "o", outputText, "Output format: text or json")

	cmd.AddCommand(
		newServeCmd(opts),
		newShowCmd(opts),
		newNextCmd(opts),
		newPreviousCmd(opts),
		newRefreshCmd(opts),
		newShareCmd(opts),
	)

	return cmd
}

// defaultProfile follows APP_ENVIRONMENT, falling back to local.
func defaultProfile() string {
	if p := os.Getenv("APP_ENVIRONMENT"); p != "" {
		return p
	}

	return "local"
}
