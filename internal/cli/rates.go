package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/curtools/cur/internal/cache"
	"github.com/curtools/cur/internal/currency"
	"github.com/curtools/cur/internal/format"
	"github.com/curtools/cur/internal/ratesource"
)

// tabPadding is the minimum column padding for tabwriter output.
const tabPadding = 2

func newRatesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "rates [BASE]",
		Short: "Show exchange rates between the supported currencies",
		Long: `Show the exchange rates of BASE against every other supported currency.
Without BASE, rates for every supported base are shown. Missing bases are
fetched concurrently; cached ones are served without a network call.`,
		Example: `  # Rates for US dollars
  cur rates usd

  # Rates for every supported base
  cur rates`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bases := currency.Supported()
			if len(args) == 1 {
				base, err := currency.ParseCurrency(args[0])
				if err != nil {
					return err
				}
				bases = []currency.Currency{base}
			}

			snapshots, err := fetchSnapshots(cmd.Context(), s.client, bases)
			if err != nil {
				return err
			}
			return renderRates(cmd.OutOrStdout(), bases, snapshots, time.Now())
		},
	}
}

// snapshotSource is the part of the rate client the rates command needs.
type snapshotSource interface {
	Snapshot(ctx context.Context, base currency.Currency) (*ratesource.Snapshot, error)
}

// fetchSnapshots loads the snapshot of every base concurrently. Results keep
// the order of bases; the first failure cancels the rest.
func fetchSnapshots(
	ctx context.Context,
	src snapshotSource,
	bases []currency.Currency,
) ([]*ratesource.Snapshot, error) {
	snapshots := make([]*ratesource.Snapshot, len(bases))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(len(bases))

	for i, base := range bases {
		g.Go(func() error {
			snap, err := src.Snapshot(gCtx, base)
			if err != nil {
				return fmt.Errorf("loading %s rates: %w", base, err)
			}
			snapshots[i] = snap
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func renderRates(w io.Writer, bases []currency.Currency, snapshots []*ratesource.Snapshot, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, "BASE\tTARGET\tRATE\tNEXT UPDATE")
	fmt.Fprintln(tw, "----\t------\t----\t-----------")

	for i, base := range bases {
		snap := snapshots[i]
		next := "due"
		if d := snap.NextUpdate().Sub(now); d > 0 {
			next = "in " + cache.FormatDuration(d)
		}

		for _, target := range currency.Supported() {
			if target == base {
				continue
			}
			rate := "n/a"
			if r, err := snap.Rate(target.Code()); err == nil {
				rate = format.Rate(r)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", base, target, rate, next)
		}
	}

	return tw.Flush()
}
