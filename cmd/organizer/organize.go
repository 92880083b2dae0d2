package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orsenthil/organizer/internal/cache"
	"github.com/orsenthil/organizer/internal/config"
	"github.com/orsenthil/organizer/internal/executor"
	"github.com/orsenthil/organizer/internal/grouper"
	"github.com/orsenthil/organizer/internal/metadata"
	"github.com/orsenthil/organizer/internal/planner"
	"github.com/orsenthil/organizer/internal/report"
	"github.com/orsenthil/organizer/internal/scanner"
	"github.com/orsenthil/organizer/internal/topic"
	"github.com/orsenthil/organizer/internal/types"
)

// pipelineOptions holds CLI flags shared by the organize and
// delete-duplicates commands.
type pipelineOptions struct {
	outputRoot string
	reportPath string
	excludes   []string
	dryRun     bool
	topics     bool
	cacheFile  string
	exiftool   bool
	noProgress bool
	verbose    bool
	configFile string
}

// bindPipelineFlags attaches the shared flag set to cmd.
func bindPipelineFlags(cmd *cobra.Command, opts *pipelineOptions) {
	cmd.Flags().StringVar(&opts.reportPath, "report", "duplicate_report.csv", "CSV report path")
	cmd.Flags().StringSliceVarP(&opts.excludes, "exclude", "e", nil, "Directory names to exclude from the scan")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Preview changes without executing")
	cmd.Flags().StringVar(&opts.cacheFile, "cache-file", "", "Path to fingerprint cache file (enables caching)")
	cmd.Flags().BoolVar(&opts.exiftool, "exiftool", false, "Use exiftool for embedded metadata and timestamp restore")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show individual file operations")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "TOML config file")
}

// newOrganizeCmd creates the organize subcommand.
func newOrganizeCmd() *cobra.Command {
	opts := &pipelineOptions{}

	cmd := &cobra.Command{
		Use:   "organize <path>",
		Short: "Move originals into Year/Month folders, duplicates alongside them",
		Long: `Scans PATH, groups files by content hash and moves each group's original
into <output-root>/<year>/<month>/. Duplicates move next to the original under
duplicate_<name>. The CSV report records every decision before any file is
touched.

Use --dry-run to write the report without moving anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0], false, opts)
		},
	}

	bindPipelineFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.outputRoot, "output-root", "", "Folder to organize into (default: the scanned path)")
	cmd.Flags().BoolVar(&opts.topics, "topics", false, "Add an inferred topic folder below year/month")

	return cmd
}

// newDeleteDuplicatesCmd creates the delete-duplicates subcommand.
func newDeleteDuplicatesCmd() *cobra.Command {
	opts := &pipelineOptions{}

	cmd := &cobra.Command{
		Use:   "delete-duplicates <path>",
		Short: "Delete duplicate files, leaving originals in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, args[0], true, opts)
		},
	}

	bindPipelineFlags(cmd, opts)

	return cmd
}

// mergeConfig overlays file values under flags the user did not set.
func mergeConfig(cmd *cobra.Command, opts *pipelineOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if !flags.Changed("report") && cfg.Report != "" {
		opts.reportPath = cfg.Report
	}
	if !flags.Changed("exclude") && len(cfg.ExcludeDirs) > 0 {
		opts.excludes = cfg.ExcludeDirs
	}
	if !flags.Changed("cache-file") && cfg.CacheFile != "" {
		opts.cacheFile = cfg.CacheFile
	}
	if !flags.Changed("exiftool") {
		opts.exiftool = cfg.Exiftool
	}
	if f := flags.Lookup("topics"); f != nil && !f.Changed {
		opts.topics = cfg.Topics
	}
	return cfg, nil
}

// drainErrors consumes errors from a channel and writes them to stderr.
// Clears the progress bar line before printing to avoid visual collision.
func drainErrors(errs <-chan error) {
	for err := range errs {
		fmt.Fprintf(os.Stderr, "\r\033[Kerror: %v\n", err)
	}
}

// runPipeline executes scan → group → plan → report → execute.
func runPipeline(cmd *cobra.Command, root string, deleteMode bool, opts *pipelineOptions) error {
	cfg, err := mergeConfig(cmd, opts)
	if err != nil {
		return err
	}

	if opts.exiftool {
		if err := metadata.CheckExiftool(); err != nil {
			return fmt.Errorf("exiftool is required but not installed: %w", err)
		}
	}
	timeout, _ := cfg.Timeout()
	extractor := metadata.New(opts.exiftool, timeout)

	var excludes []string
	if len(opts.excludes) > 0 {
		excludes = opts.excludes
	}

	showProgress := !opts.noProgress

	// Shared channel for non-fatal errors
	errors := make(chan error, 100)
	go drainErrors(errors)
	defer close(errors)

	fpCache, err := cache.Open(opts.cacheFile)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = fpCache.Close() }()

	fmt.Printf("Scanning files under: %s\n", root)
	records := scanner.New(root, excludes, extractor, fpCache, showProgress, errors).Run(cmd.Context())
	if len(records) == 0 {
		fmt.Println("No files found to process.")
		return nil
	}

	groups := grouper.Group(records, time.Now())

	outputRoot := opts.outputRoot
	if outputRoot == "" {
		outputRoot = root
	}
	planOpts := planner.Options{}
	if deleteMode {
		planOpts.DuplicateAction = types.ActionDelete
	}
	if opts.topics && !deleteMode {
		labeler := topic.NewLabeler(cfg.TextExtensions)
		planOpts.TopicFor = func(r *types.FileRecord) string { return labeler.Label(r.Path) }
	}
	entries := planner.Plan(groups, outputRoot, planOpts)

	if err := report.WriteEntries(opts.reportPath, entries); err != nil {
		return err
	}
	fmt.Printf("CSV report written to: %s\n", opts.reportPath)

	var restore executor.TimestampFunc
	if opts.exiftool {
		restore = restoreFileDates(timeout)
	}
	exec := executor.New(entries, opts.dryRun, opts.verbose, showProgress, errors, restore)

	if deleteMode {
		summary := exec.DeleteDuplicates()
		fmt.Printf("Done. Deleted: %d, Skipped: %d, Failed: %d.\n",
			summary.Applied, summary.Skipped, summary.Failed)
		return nil
	}

	summary := exec.Organize()
	if opts.dryRun {
		fmt.Printf("Dry run. Would move: %d files. Re-run without --dry-run to apply.\n",
			summary.Skipped)
		return nil
	}
	fmt.Printf("Done. Moved: %d, Skipped: %d, Failed: %d.\n",
		summary.Applied, summary.Skipped, summary.Failed)
	return nil
}
