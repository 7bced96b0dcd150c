// Package cli implements the cur command line.
package cli

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/curtools/cur/internal/clipboard"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Option customizes the collaborators used by the commands.
type Option func(*options)

type options struct {
	copier     clipboard.Copier
	httpClient *http.Client
}

// WithCopier replaces the system clipboard.
func WithCopier(c clipboard.Copier) Option {
	return func(o *options) { o.copier = c }
}

// WithHTTPClient replaces the HTTP client used to reach the rate source.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// NewRootCmd creates the root command. Invoked with three arguments it
// converts an amount; the subcommands inspect rates, the cache and the
// configuration.
func NewRootCmd(ver string, opts ...Option) *cobra.Command {
	o := options{copier: clipboard.System{}}
	for _, opt := range opts {
		opt(&o)
	}

	s := &session{opts: o}
	var convert convertFlags

	cmd := &cobra.Command{
		Use:   "cur <amount> <from> <to>",
		Short: "Quick currency conversion tool for AUD, KRW, and USD",
		Long: `Convert currency between AUD, KRW, and USD.

Arguments:
  amount  Amount to convert (supports K/M/B units and commas, e.g. 1.5k, 2,300)
  from    Source currency (AUD/KRW/USD)
  to      Target currency (AUD/KRW/USD)

Rates are cached until the rate source publishes its next update.`,
		Example:       rootCmdExample,
		Version:       ver,
		Args:          cobra.ExactArgs(3), //nolint:mnd // amount, from, to
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return s.close(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, s, convert, args)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().Bool("no-cache", false, "do not read or write the rate cache")
	cmd.PersistentFlags().String("cache-dir", "", "rate cache directory (overrides config file and CUR_CACHE_DIR)")
	cmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics to this file after the command")

	cmd.Flags().StringVarP(&convert.copyFormat, "copy", "c", "",
		"Format for clipboard: default (with commas), plain (no commas), short (K/M/B)")
	cmd.Flags().BoolVar(&convert.noCopy, "no-copy", false, "do not copy the result to the clipboard")

	cmd.AddCommand(
		newRatesCmd(s),
		newCacheCmd(s),
		newConfigCmd(s),
		newVersionCmd(ver),
	)

	return cmd
}

const rootCmdExample = `  # Convert 1,000 US dollars to won
  cur 1000 usd krw

  # Units and commas are accepted
  cur 1.5k aud krw
  cur 2,300,000 krw usd

  # Copy the plain number instead of the comma-grouped one
  cur 1000 usd krw --copy plain

  # Show today's rates for every base currency
  cur rates

  # Drop cached rates
  cur cache clear`
