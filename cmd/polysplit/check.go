package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/polysplit/internal/check"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report ffmpeg, ffprobe, PCM encoders, and free space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx.cfg.CheckOnly = true
			cfg, log, err := ctx.start(cmd)
			if err != nil {
				return err
			}
			defer log.Close()

			if problems := check.RunCheck(cfg, log); problems > 0 {
				log.Warn("%d problem(s) found", problems)
				return errReported
			}
			log.Success("All checks passed")
			return nil
		},
	}
}
