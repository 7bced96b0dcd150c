package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curtools/cur/internal/clipboard"
	"github.com/curtools/cur/internal/conversion"
	"github.com/curtools/cur/internal/currency"
	"github.com/curtools/cur/internal/logging"
)

type convertFlags struct {
	copyFormat string
	noCopy     bool
}

// convertArgs are the parsed positional arguments of the root command.
type convertArgs struct {
	amount float64
	from   currency.Currency
	to     currency.Currency
}

func parseConvertArgs(args []string) (convertArgs, error) {
	amount, err := currency.ParseAmount(args[0])
	if err != nil {
		return convertArgs{}, err
	}
	from, err := currency.ParseCurrency(args[1])
	if err != nil {
		return convertArgs{}, err
	}
	to, err := currency.ParseCurrency(args[2])
	if err != nil {
		return convertArgs{}, err
	}
	return convertArgs{amount: amount, from: from, to: to}, nil
}

// resolve picks the clipboard format. It returns false when nothing
// should be copied.
func (f convertFlags) resolve(cmd *cobra.Command, s *session) (clipboard.Format, bool, error) {
	if f.noCopy {
		return "", false, nil
	}
	explicit := cmd.Flags().Changed("copy")
	if !explicit && !s.cfg.Output.Copy {
		return "", false, nil
	}

	name := s.cfg.Output.CopyFormat
	if f.copyFormat != "" {
		name = f.copyFormat
	}
	format, err := clipboard.ParseFormat(name)
	if err != nil {
		return "", false, err
	}
	return format, true, nil
}

func runConvert(cmd *cobra.Command, s *session, flags convertFlags, args []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	in, err := parseConvertArgs(args)
	if err != nil {
		return err
	}
	copyFormat, doCopy, err := flags.resolve(cmd, s)
	if err != nil {
		return err
	}

	result, err := conversion.NewService(s.client).Convert(ctx, in.amount, in.from, in.to)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err = renderConversion(out, result); err != nil {
		return err
	}

	if !doCopy {
		return nil
	}

	value := clipboard.Value(result, copyFormat)
	if copyErr := s.opts.copier.Copy(value); copyErr != nil {
		log.Warn().Ctx(ctx).Err(copyErr).Msg("clipboard copy failed")
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not copy to clipboard: %v\n", copyErr)
		return nil
	}
	return renderCopied(out, value)
}
