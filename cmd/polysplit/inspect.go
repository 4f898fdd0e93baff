package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/polysplit/internal/check"
	"github.com/backmassage/polysplit/internal/pipeline"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Probe every unit and report channel counts without writing",
		Long: "inspect runs discovery and probing only. It prints one row per unit\n" +
			"with channel count, sample rate, and format, and flags units whose\n" +
			"channel count does not match the labels file. It exits 1 when any\n" +
			"unit would fail a real run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx.cfg.InspectOnly = true
			cfg, log, err := ctx.start(cmd)
			if err != nil {
				return err
			}
			defer log.Close()

			if _, err := absPath(cfg.SourceDir); err != nil {
				log.Error("Source not found: %s", cfg.SourceDir)
				return errReported
			}
			if err := check.CheckDeps(cfg); err != nil {
				log.Error("%v", err)
				return errReported
			}

			runCtx, cancel := signalContext(cmd.Context(), log)
			defer cancel()

			r := pipeline.NewRunner(cfg, log)
			r.Out = cmd.OutOrStdout()
			rep, err := r.Inspect(runCtx)
			if err != nil {
				log.Error("%v", err)
				return errReported
			}
			if rep.Problems > 0 {
				return errReported
			}
			return nil
		},
	}
}
