package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

// UI handles terminal output with colors and progress indicators.
type UI struct {
	success *color.Color
	errs    *color.Color
	warning *color.Color
	info    *color.Color
}

// NewUI creates a terminal UI. Colors are disabled when requested or when
// stdout is not a terminal (fatih/color handles the latter itself).
func NewUI(disableColor bool) *UI {
	if disableColor {
		color.NoColor = true
	}
	return &UI{
		success: color.New(color.FgGreen, color.Bold),
		errs:    color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow),
		info:    color.New(color.FgCyan),
	}
}

// Success prints a success message.
func (u *UI) Success(format string, args ...interface{}) {
	u.success.Fprintf(os.Stderr, "✓ "+format+"\n", args...)
}

// Error prints an error message.
func (u *UI) Error(format string, args ...interface{}) {
	u.errs.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// Warning prints a warning message.
func (u *UI) Warning(format string, args ...interface{}) {
	u.warning.Fprintf(os.Stderr, "! "+format+"\n", args...)
}

// Info prints an informational message.
func (u *UI) Info(format string, args ...interface{}) {
	u.info.Fprintf(os.Stderr, format+"\n", args...)
}

// NewProgressBar creates a progress bar for n steps.
func (u *UI) NewProgressBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)
}

// previewColumns are the shortlist columns worth showing on a terminal.
var previewColumns = []string{
	pipeline.FieldTPIScore,
	pipeline.FieldASIN,
	pipeline.FieldTitle,
	pipeline.FieldPrice,
	pipeline.FieldMonthlySales,
}

// PreviewTable prints the first n shortlist rows as an aligned table.
func (u *UI) PreviewTable(table pipeline.Table, n int) {
	if n > len(table.Records) {
		n = len(table.Records)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(previewColumns, "\t"))
	for _, rec := range table.Records[:n] {
		cells := make([]string, 0, len(previewColumns))
		for _, col := range previewColumns {
			cells = append(cells, truncateCell(rec.Str(col), 40))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func truncateCell(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
