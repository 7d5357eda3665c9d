package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/quidome/exify/pkg/config"
	"github.com/quidome/exify/pkg/logging"
	"github.com/quidome/exify/pkg/scan"
)

// runFlags are the flags shared by commands that process a directory.
type runFlags struct {
	tolerance config.Duration
	workers   int
	timeout   config.Duration
	backupDir string
	all       bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().Var(&f.tolerance, "tolerance", "accepted spread between timestamps, e.g. 30d or 720h (default 30d)")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "number of files processed concurrently (default 1)")
	cmd.Flags().Var(&f.timeout, "timeout", "time limit for analyzing one file (default 30s)")
	cmd.Flags().StringVar(&f.backupDir, "backup-dir", "", "store a compressed copy of every file before changing it")
	cmd.Flags().BoolVar(&f.all, "all", false, "include files without WA in their name")
}

// loadConfig reads the config file and applies the flags that were set on
// the command line. dir, when not empty, replaces base_dir.
func loadConfig(cmd *cobra.Command, opts *options, rf *runFlags, dir string) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.BaseDir = dir
	}

	flags := cmd.Flags()
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}

	if rf != nil {
		if flags.Changed("tolerance") {
			cfg.Tolerance = rf.tolerance
		}
		if flags.Changed("workers") {
			cfg.Workers = rf.workers
		}
		if flags.Changed("timeout") {
			cfg.Timeout = rf.timeout
		}
		if flags.Changed("backup-dir") {
			cfg.BackupDir = rf.backupDir
		}
		if flags.Changed("all") {
			cfg.WhatsAppOnly = !rf.all
		}
	}

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(cmd.ErrOrStderr(), level, logging.Format(cfg.LogFormat), logging.NewRunID())
}

func scanOptions(cfg *config.Config) scan.Options {
	opts := scan.DefaultOptions()
	opts.Extensions = cfg.Extensions
	opts.WhatsAppOnly = cfg.WhatsAppOnly
	return opts
}

func positional(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func tolerance(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Tolerance)
}

func validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func writeConfig(cmd *cobra.Command, cfg *config.Config) error {
	m := &config.Manager{}
	return m.Write(cmd.OutOrStdout(), cfg)
}
