package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quidome/exify/pkg/backup"
	"github.com/quidome/exify/pkg/duplicates"
	"github.com/quidome/exify/pkg/scan"
)

func newScanCmd(opts *options) *cobra.Command {
	var maxDepth int
	var all bool

	scanCmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "List the photos exify would process",
		Long:  "Scan a directory and print all candidate photos found (relative to the scan root).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			directory := args[0]

			cfg, err := loadConfig(cmd, opts, nil, directory)
			if err != nil {
				return err
			}

			scanOpts := scanOptions(cfg)
			scanOpts.MaxDepth = maxDepth
			if all {
				scanOpts.WhatsAppOnly = false
			}

			matches, err := scan.Scan(os.DirFS(directory), ".", scanOpts)
			if err != nil {
				return err
			}

			for _, match := range matches {
				cmd.Println(match.Path)
			}

			if opts.verbose {
				cmd.PrintErrf("found %d photos\n", len(matches))
			}

			return nil
		},
	}

	scanCmd.Flags().IntVar(&maxDepth, "max-depth", -1, "maximum recursion depth (0 = no recursion)")
	scanCmd.Flags().BoolVar(&all, "all", false, "include files without WA in their name")

	return scanCmd
}

func newDuplicatesCmd(opts *options) *cobra.Command {
	var all bool

	duplicatesCmd := &cobra.Command{
		Use:   "duplicates [directory]",
		Short: "Find photos with identical content",
		Long: "Group photos with byte-identical content. The file with the oldest date " +
			"(from its name, else its modification time) is listed as the one to keep.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, nil, args[0])
			if err != nil {
				return err
			}
			scanOpts := scanOptions(cfg)
			if all {
				scanOpts.WhatsAppOnly = false
			}

			records, err := scan.Dir(cfg.BaseDir, scanOpts)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			groups, err := duplicates.Find(duplicates.Candidates(records, time.Local))
			if err != nil {
				return err
			}

			for _, g := range groups {
				cmd.Printf("keep %s\n", g.Keep)
				for _, d := range g.Duplicates {
					cmd.Printf("  duplicate %s\n", d)
				}
			}
			if opts.verbose {
				cmd.PrintErrf("found %d duplicate groups in %d photos\n", len(groups), len(records))
			}
			return nil
		},
	}

	duplicatesCmd.Flags().BoolVar(&all, "all", false, "include files without WA in their name")
	return duplicatesCmd
}

func newRestoreCmd(opts *options) *cobra.Command {
	var keepExisting bool

	restoreCmd := &cobra.Command{
		Use:   "restore [backup-dir] [base-dir]",
		Short: "Restore files from a backup directory",
		Long:  "Decompress every backup made by fix --backup-dir back to its place below the base directory.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := backup.New(args[0], args[1])
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if opts.dryRun {
				entries, err := store.List()
				if err != nil {
					return err
				}
				for _, e := range entries {
					cmd.Printf("%s -> %s\n", e.Backup, e.Target)
				}
				return nil
			}

			results, err := store.Restore(backup.Options{Overwrite: !keepExisting})
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if !r.Success {
					failed++
					cmd.Printf("FAILED %s: %v\n", r.Target, r.Error)
					continue
				}
				if opts.verbose {
					cmd.Printf("restored %s\n", r.Target)
				}
			}
			cmd.Printf("RESTORED: %d, ERRORS: %d\n", len(results)-failed, failed)

			if failed > 0 {
				return fmt.Errorf("%d files could not be restored", failed)
			}
			return nil
		},
	}

	restoreCmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "do not overwrite files that exist")
	return restoreCmd
}

func newConfigCmd(opts *options) *cobra.Command {
	rf := &runFlags{}

	configCmd := &cobra.Command{
		Use:   "config [directory]",
		Short: "Print the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, rf, positional(args))
			if err != nil {
				return err
			}
			return writeConfig(cmd, cfg)
		},
	}

	rf.register(configCmd)
	return configCmd
}
