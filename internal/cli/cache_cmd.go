package cli

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/curtools/cur/internal/cache"
)

// errCacheDisabled is returned by cache commands run with caching off.
var errCacheDisabled = errors.New("rate cache is disabled (--no-cache or cache.enabled=false)")

func newCacheCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the rate cache",
	}
	cmd.AddCommand(newCacheListCmd(s), newCacheClearCmd(s), newCachePathCmd(s))
	return cmd
}

func newCacheListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached base currencies and when they expire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.cacheDir == "" {
				return errCacheDisabled
			}
			entries, err := s.rates.Entries()
			if err != nil {
				return fmt.Errorf("listing cache: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache is empty.")
				return nil
			}

			sort.Slice(entries, func(i, j int) bool {
				return entries[i].Key < entries[j].Key
			})

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			fmt.Fprintln(tw, "BASE\tEXPIRES\tTTL")
			fmt.Fprintln(tw, "----\t-------\t---")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n",
					e.Key, e.ExpiresAt.UTC().Format("2006-01-02 15:04:05 MST"), cache.FormatDuration(e.TTL))
			}
			return tw.Flush()
		},
	}
}

func newCacheClearCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached rate snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if s.cacheDir == "" {
				return errCacheDisabled
			}
			if err := s.rates.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}

func newCachePathCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := s.cfg.CacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
