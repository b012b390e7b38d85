package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"parsewright/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [target]",
	Short: "Validate an existing parser artifact against its fixtures",
	Long: `Runs the generated parser for a target against the sample PDF and
compares its output with the expected CSV. Prints the success marker and
exits zero on a match; prints a diagnostic and exits nonzero otherwise.

This is also the default validation subprocess the run command spawns.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         verifyTarget,
}

func verifyTarget(cmd *cobra.Command, args []string) error {
	target := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	h := &verify.Harness{
		Python:        cfg.Validator.Python,
		ParserDir:     cfg.Agent.ParserDir,
		FixtureRoot:   cfg.Agent.FixtureRoot,
		SuccessMarker: cfg.Validator.SuccessMarker,
		Timeout:       cfg.GetValidatorTimeout(),
		Out:           os.Stdout,
	}
	return h.Run(ctx, target)
}
