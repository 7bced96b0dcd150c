package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curtools/cur/pkg/version"
)

func newVersionCmd(ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cur %s (commit %s, built %s)\n",
				ver, version.GetGitCommit(), version.GetBuildDate())
			return err
		},
	}
}
