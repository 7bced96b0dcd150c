package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curtools/cur/internal/config"
	"github.com/curtools/cur/internal/logging"
)

// setupLogging builds the logger from cfg, stores it and a fresh trace ID in
// the command context, and returns where log lines go.
func setupLogging(cmd *cobra.Command, cfg *config.Config) logging.LogPathResult {
	// Ensure log directory exists after all overrides have been applied.
	if err := cfg.EnsureLogDir(); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
	}

	result := logging.NewLoggerWithPath(cfg.Logging.ToLoggingConfig())
	logger := logging.ComponentLogger(result.Logger, "cli")

	if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return result
}

// applyLoggingFlags lets --debug override the configured logging.
func applyLoggingFlags(cmd *cobra.Command, cfg *config.Config) {
	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = logging.FormatConsole
		cfg.Logging.File = ""
	}
}
