// Package main provides the selection engine CLI entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/charts"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/config"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/export"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/ingest"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/observability"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

const version = "2.0.0"

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "selector-cli",
	Short: "Merge ranked product exports and shortlist the best opportunities",
	Long: `selector-cli merges product-listing spreadsheets exported from a research
tool, normalizes their headers, deduplicates by ASIN, filters out blocked
brands and unworkable price/weight bands, and ranks the survivors by the TPI
score. Products appearing on several ranking lists score highest.

The result is a top-N shortlist written as an xlsx workbook (or csv/sqlite),
plus an optional HTML chart page.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := cfg.Observability.LogFormat
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      logFormat,
			ServiceName: "selector-cli",
		})

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: built-in defaults + env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "log in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRunCmd creates the run subcommand.
func newRunCmd() *cobra.Command {
	var (
		inputs     []string
		format     string
		outDir     string
		withCharts bool
		preview    int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the selection over one or more input spreadsheets",
		Long: `Run reads every input, merges them, and writes the ranked shortlist.

Each --input takes path=tag, where the tag names the ranking list the file
represents (growth, rating, new, ...). When the tag is omitted, the file name
is used. All sources must read cleanly: one broken file aborts the run,
because the cross-list overlap signal needs every list present.`,
		Example: `  selector-cli run \
      --input 销量增长Top100.xlsx=List_A_Growth \
      --input 评分数Top100.xlsx=List_B_Rating \
      --input 上架时间Top100.xlsx=List_C_New \
      --charts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			if len(inputs) == 0 {
				return fmt.Errorf("at least one --input is required")
			}

			sources, err := parseInputs(inputs)
			if err != nil {
				return err
			}

			if outDir != "" {
				cfg.Export.OutputDir = outDir
			}

			ui := NewUI(noColor)

			// Read sources with a progress bar; fatal on the first failure.
			reader := ingest.NewReader(logger)
			bar := ui.NewProgressBar(len(sources), "reading sources")
			tables := make([]pipeline.SourceTable, 0, len(sources))
			for _, src := range sources {
				tbl, err := reader.Read(src)
				if err != nil {
					_ = bar.Finish()
					ui.Error("failed to read %s", src.Path)
					return err
				}
				tables = append(tables, tbl)
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			p := pipeline.New(logger, cfg.PipelineOptions())
			result, err := p.Run(ctx, tables)
			if err != nil {
				var confErr *pipeline.ConfigurationError
				if errors.As(err, &confErr) {
					ui.Error("configuration problem: %v", confErr)
				}
				return err
			}

			ui.Success("merged %d rows from %d sources into %d candidates, %d survived filters",
				result.Stats.RawRows, result.Stats.Sources, result.Stats.UniqueRows, result.Stats.FilteredRows)
			if result.Stats.CoercedCells > 0 {
				ui.Warning("%d numeric cells could not be parsed and were treated as zero", result.Stats.CoercedCells)
			}

			if result.Table.Empty() {
				ui.Warning("no products survived the filters; output will be empty")
			} else {
				ui.Info("top %d preview:", min(preview, len(result.Table.Records)))
				ui.PreviewTable(result.Table, preview)
			}

			outPath, err := writeResult(result.Table, format)
			if err != nil {
				return err
			}
			ui.Success("shortlist written to %s", outPath)

			if withCharts {
				chartsPath := filepath.Join(cfg.Export.OutputDir, cfg.Export.ChartsName)
				if result.Table.Empty() {
					ui.Warning("skipping charts: empty result")
				} else if err := charts.WriteHTML(chartsPath, result.Table); err != nil {
					return fmt.Errorf("write charts: %w", err)
				} else {
					ui.Success("charts written to %s", chartsPath)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "input spreadsheet as path=tag (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "output format: xlsx, csv, or sqlite")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&withCharts, "charts", false, "also render the HTML chart page")
	cmd.Flags().IntVar(&preview, "preview", 5, "number of shortlist rows to print")

	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the selector version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("selector-cli %s\n", version)
		},
	}
}

// parseInputs turns path=tag flags into ingest sources. A missing tag falls
// back to the file name without its extension.
func parseInputs(inputs []string) ([]ingest.Source, error) {
	sources := make([]ingest.Source, 0, len(inputs))
	for _, in := range inputs {
		path, tag, found := strings.Cut(in, "=")
		if path == "" {
			return nil, fmt.Errorf("invalid --input %q", in)
		}
		if !found || tag == "" {
			base := filepath.Base(path)
			tag = strings.TrimSuffix(base, filepath.Ext(base))
		}
		sources = append(sources, ingest.Source{Path: path, Tag: tag})
	}
	return sources, nil
}

// writeResult writes the table in the requested format and returns the path.
func writeResult(table pipeline.Table, format string) (string, error) {
	switch strings.ToLower(format) {
	case "xlsx":
		path := filepath.Join(cfg.Export.OutputDir, cfg.Export.WorkbookName)
		return path, export.WriteWorkbook(path, cfg.Export.SheetName, table)
	case "csv":
		path := filepath.Join(cfg.Export.OutputDir, replaceExt(cfg.Export.WorkbookName, ".csv"))
		return path, export.WriteCSV(path, table)
	case "sqlite":
		path := filepath.Join(cfg.Export.OutputDir, replaceExt(cfg.Export.WorkbookName, ".sqlite"))
		return path, export.WriteSQLite(path, table)
	default:
		return "", fmt.Errorf("unknown format %q (want xlsx, csv, or sqlite)", format)
	}
}

func replaceExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
