// Package ingest reads product-listing exports into the tabular structure the
// pipeline consumes. It understands xlsx workbooks and csv files; everything
// past the header row is handed over untyped.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/observability"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

// Source is one input spreadsheet plus the tag naming the ranking list it
// represents.
type Source struct {
	Path string
	Tag  string
}

// Reader parses input sources. Any failure is fatal to the whole run: the
// overlap signal needs every list present, so a broken source invalidates the
// merge.
type Reader struct {
	logger *observability.Logger
}

// NewReader creates a Reader.
func NewReader(logger *observability.Logger) *Reader {
	if logger == nil {
		logger = observability.DefaultLogger()
	}
	return &Reader{logger: logger}
}

// ReadAll parses every source in order. The first failure aborts with an
// *pipeline.IngestionError naming the offending source.
func (r *Reader) ReadAll(sources []Source) ([]pipeline.SourceTable, error) {
	tables := make([]pipeline.SourceTable, 0, len(sources))
	for _, src := range sources {
		tbl, err := r.Read(src)
		if err != nil {
			return nil, err
		}
		tables = append(tables, tbl)
	}
	return tables, nil
}

// Read parses a single source, choosing the parser by file extension.
func (r *Reader) Read(src Source) (pipeline.SourceTable, error) {
	logger := r.logger.WithSource(src.Tag)

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(src.Path)
	case ".csv":
		rows, err = readCSV(src.Path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(src.Path))
	}
	if err != nil {
		logger.Error().Err(err).Str("path", src.Path).Msg("Failed to read source")
		return pipeline.SourceTable{}, &pipeline.IngestionError{Tag: src.Tag, Path: src.Path, Err: err}
	}

	tbl := pipeline.SourceTable{Tag: src.Tag}
	if len(rows) > 0 {
		tbl.Headers = rows[0]
		tbl.Rows = rows[1:]
	}

	logger.Debug().
		Str("path", src.Path).
		Int("columns", len(tbl.Headers)).
		Int("rows", len(tbl.Rows)).
		Msg("Read source")

	return tbl, nil
}

// ReadFrom parses a source from a stream, for uploads that never touch disk.
// The filename is only used to choose the parser and to label errors.
func (r *Reader) ReadFrom(tag, filename string, rd io.Reader) (pipeline.SourceTable, error) {
	logger := r.logger.WithSource(tag)

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = parseWorkbook(rd)
	case ".csv":
		rows, err = parseCSV(rd)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		logger.Error().Err(err).Str("filename", filename).Msg("Failed to read uploaded source")
		return pipeline.SourceTable{}, &pipeline.IngestionError{Tag: tag, Path: filename, Err: err}
	}

	tbl := pipeline.SourceTable{Tag: tag}
	if len(rows) > 0 {
		tbl.Headers = rows[0]
		tbl.Rows = rows[1:]
	}

	logger.Debug().
		Str("filename", filename).
		Int("columns", len(tbl.Headers)).
		Int("rows", len(tbl.Rows)).
		Msg("Read uploaded source")

	return tbl, nil
}

// readWorkbook parses the first sheet of an xlsx workbook on disk.
func readWorkbook(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseWorkbook(f)
}

// readCSV parses a csv file on disk.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f)
}

// parseWorkbook parses the first sheet of an xlsx workbook.
func parseWorkbook(rd io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// parseCSV parses csv content, tolerating ragged rows and a UTF-8 BOM.
func parseCSV(rd io.Reader) ([][]string, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows, nil
}
