package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/quidome/exify/pkg/backup"
	"github.com/quidome/exify/pkg/config"
	"github.com/quidome/exify/pkg/exifcodec"
	"github.com/quidome/exify/pkg/fixer"
	"github.com/quidome/exify/pkg/plan"
	"github.com/quidome/exify/pkg/reconcile"
	"github.com/quidome/exify/pkg/repair"
	"github.com/quidome/exify/pkg/scan"
	"github.com/quidome/exify/pkg/timestamp"
)

func newFixCmd(opts *options) *cobra.Command {
	rf := &runFlags{}

	fixCmd := &cobra.Command{
		Use:   "fix [directory]",
		Short: "Repair photo timestamps",
		Long: "Analyze every photo below the directory (or base_dir from the config file) and repair " +
			"missing EXIF timestamps and file times that deviate from the date in the file name.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, rf, positional(args))
			if err != nil {
				return err
			}
			if err := validate(cfg); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			log := newLogger(cmd, cfg)
			summary, err := run(cmd, cfg, log, opts.dryRun)
			if summary != nil {
				printSummary(cmd, summary, opts.dryRun)
				log.Info("finished", "ok", summary.OK, "updated", summary.Updated, "planned", summary.Planned, "errors", summary.Failed)
			}
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d files could not be processed", summary.Failed)
			}
			return nil
		},
	}

	rf.register(fixCmd)
	return fixCmd
}

func run(cmd *cobra.Command, cfg *config.Config, log *slog.Logger, dryRun bool) (*fixer.Summary, error) {
	records, err := scan.Dir(cfg.BaseDir, scanOptions(cfg))
	if err != nil {
		return nil, err
	}

	codec := exifcodec.NewJPEG()
	analyzer := reconcile.NewAnalyzer(codec, reconcile.Options{
		Tolerance: tolerance(cfg),
		Platform:  timestamp.CurrentPlatform(),
		Location:  time.Local,
		Logger:    log,
	})
	log.Info("starting", "base_dir", cfg.BaseDir, "files", len(records), "tolerance", analyzer.Tolerance().String(), "dry_run", dryRun)

	runOpts := fixer.Options{
		Workers: cfg.Workers,
		Timeout: time.Duration(cfg.Timeout),
		DryRun:  dryRun,
		Logger:  log,
	}
	if cfg.BackupDir != "" && !dryRun {
		store, err := backup.New(cfg.BackupDir, cfg.BaseDir)
		if err != nil {
			return nil, err
		}
		runOpts.Backup = store
	}

	runner := fixer.New(analyzer, repair.NewExifWriter(codec, log), repair.NewFileTimeWriter(log), runOpts)
	return runner.Run(cmd.Context(), scan.Paths(records))
}

func printSummary(cmd *cobra.Command, summary *fixer.Summary, dryRun bool) {
	if dryRun {
		records := make([]*reconcile.FileRecord, 0, len(summary.Results))
		for _, r := range summary.Results {
			records = append(records, r.Record)
		}
		for _, op := range plan.Plan(records) {
			cmd.Printf("%s: %s\n", op.Path, joinSteps(op.Steps))
		}
	}

	cmd.Println(summary.String())
	if dryRun {
		cmd.Printf("PLANNED: %d\n", summary.Planned)
	}

	for _, r := range summary.Failures() {
		cmd.Printf("FAILED %s: %v\n", r.Record.Path(), r.Record.Err())
	}
}

func joinSteps(steps []plan.Step) string {
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// fileReport is the analyze output for one file.
type fileReport struct {
	Path       string          `json:"path"`
	State      reconcile.State `json:"state"`
	Timestamps timestamp.Set   `json:"timestamps"`
	Consistent bool            `json:"consistent"`
	HasExif    bool            `json:"has_exif_timestamp"`
	Spread     string          `json:"spread,omitempty"`
	Steps      []plan.Step     `json:"steps,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
}

func newReport(r fixer.Result) fileReport {
	rec := r.Record
	report := fileReport{
		Path:       rec.Path(),
		State:      rec.State,
		Timestamps: rec.Timestamps,
		Consistent: rec.Result.Consistent,
		HasExif:    rec.Result.HasExifTimestamp,
		Steps:      r.Steps,
	}
	if rec.State.Analyzed() {
		report.Spread = reconcile.Spread(rec.Timestamps.Values(true)).String()
	}
	for _, err := range rec.Errors {
		report.Errors = append(report.Errors, err.Error())
	}
	return report
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	rf := &runFlags{}
	var asJSON bool

	analyzeCmd := &cobra.Command{
		Use:   "analyze [directory]",
		Short: "Report the timestamps of every photo without changing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, rf, positional(args))
			if err != nil {
				return err
			}
			if err := validate(cfg); err != nil {
				return err
			}
			cmd.SilenceUsage = true

			summary, err := run(cmd, cfg, newLogger(cmd, cfg), true)
			if err != nil {
				return err
			}

			reports := make([]fileReport, 0, len(summary.Results))
			for _, r := range summary.Results {
				reports = append(reports, newReport(r))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}

			for _, r := range reports {
				line := fmt.Sprintf("%s\t%s", r.State, r.Path)
				if r.Spread != "" {
					line += "\tspread=" + r.Spread
				}
				if len(r.Steps) > 0 {
					line += "\tneeds=" + joinSteps(r.Steps)
				}
				if len(r.Errors) > 0 {
					line += "\terror=" + strings.Join(r.Errors, "; ")
				}
				cmd.Println(line)
			}
			return nil
		},
	}

	rf.register(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return analyzeCmd
}
