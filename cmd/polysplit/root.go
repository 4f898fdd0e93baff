package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/polysplit/internal/check"
	"github.com/backmassage/polysplit/internal/config"
	"github.com/backmassage/polysplit/internal/pipeline"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "polysplit -s SOURCE -o OUTPUT [-l LABELS]",
		Short: "Split polyphonic WAV/AIFF recordings into labeled mono files",
		Long: "polysplit finds multichannel recordings under SOURCE, optionally stitches\n" +
			"numbered recorder segments into sessions, and writes one mono file per\n" +
			"channel named after the matching line of the labels file.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, ctx)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "TOML config file (default ./"+config.ProjectConfigName+" if present)")
	config.BindFlags(flags, &ctx.cfg)

	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	return rootCmd
}

func runSplit(cmd *cobra.Command, ctx *commandContext) error {
	cfg, log, err := ctx.start(cmd)
	if err != nil {
		return err
	}
	defer log.Close()

	// Output and inputs must not overlap: discovery would rescan the output,
	// and the output modes rename or delete the output root.
	sourceAbs, err := absPath(cfg.SourceDir)
	if err != nil {
		log.Error("Source not found: %s", cfg.SourceDir)
		return errReported
	}
	outputAbs, err := config.ResolvePath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return errReported
	}
	labelsAbs, err := config.ResolvePath(cfg.LabelsFile)
	if err != nil {
		log.Error("Cannot resolve labels path: %s", cfg.LabelsFile)
		return errReported
	}
	if err := cfg.ValidatePaths(sourceAbs, outputAbs, labelsAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path that neither contains nor sits inside: %s", cfg.SourceDir)
		return errReported
	}

	log.Info("=== polysplit v%s (%s) ===", version, commit)
	log.Info("Source: %s", cfg.SourceDir)
	log.Info("Output: %s", cfg.OutputDir)
	log.Info("Labels: %s", cfg.LabelsFile)
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}
	log.Info("")

	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		return errReported
	}

	runCtx, cancel := signalContext(cmd.Context(), log)
	defer cancel()

	if _, err := pipeline.NewRunner(cfg, log).Run(runCtx); err != nil {
		if errors.Is(err, pipeline.ErrJobFailure) {
			// Per-unit errors were logged as they happened.
			log.Error("%v", err)
		} else {
			log.Error("Aborted: %v", err)
		}
		return errReported
	}
	return nil
}
