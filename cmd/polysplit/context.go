package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/polysplit/internal/config"
	"github.com/backmassage/polysplit/internal/display"
	"github.com/backmassage/polysplit/internal/logging"
)

// errReported marks a failure that has already been logged; main only
// sets the exit code for it.
var errReported = errors.New("failure already reported")

// commandContext carries the configuration shared by all subcommands.
// Flags write straight into cfg.
type commandContext struct {
	cfg        config.Config
	configFlag string
	configPath string // File actually read, "" when none.
}

func newCommandContext() *commandContext {
	return &commandContext{cfg: config.DefaultConfig()}
}

// load applies the config file under the flags the user set explicitly,
// so precedence is defaults, then file, then command line.
func (c *commandContext) load(cmd *cobra.Command) (*config.Config, error) {
	changed := config.ChangedFlags(cmd.Flags())
	path, err := config.LoadFile(c.configFlag, &c.cfg)
	if err != nil {
		return nil, err
	}
	if err := config.ReapplyChanged(cmd.Flags(), changed); err != nil {
		return nil, err
	}
	c.configPath = path
	return &c.cfg, nil
}

// start loads and validates the configuration, opens the logger, and
// prints the banner. Errors before the logger exists go to stderr via
// main.
func (c *commandContext) start(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := c.load(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	display.PrintBanner(cmd.OutOrStdout())
	if c.configPath != "" {
		log.Info("Config: %s", c.configPath)
	}
	return cfg, log, nil
}

// signalContext cancels on SIGINT/SIGTERM so running jobs are killed and
// no new ones start.
func signalContext(parent context.Context, log *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping jobs…")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of source and output hierarchies.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
