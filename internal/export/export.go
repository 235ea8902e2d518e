// Package export writes the ranked shortlist out as an xlsx workbook, a csv,
// or a sqlite table. The writers are thin; all decisions were made upstream
// in the pipeline.
package export

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

// WriteWorkbook writes the table to an xlsx workbook with one sheet. Numeric
// cells keep their numeric type so spreadsheet apps can sort and chart them.
func WriteWorkbook(path, sheet string, table pipeline.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := buildWorkbook(sheet, table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteWorkbookTo streams the workbook to a writer, for HTTP responses that
// never touch disk.
func WriteWorkbookTo(w io.Writer, sheet string, table pipeline.Table) error {
	f, err := buildWorkbook(sheet, table)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(sheet string, table pipeline.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
	}

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range table.Records {
		row := make([]any, len(table.Columns))
		for j, col := range table.Columns {
			row[j] = cellValue(rec, col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

// WriteCSV writes the table as UTF-8 csv with a BOM, which keeps spreadsheet
// apps from garbling non-ASCII titles.
func WriteCSV(path string, table pipeline.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.CellStrings() {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSQLite writes the table into a fresh sqlite database, one typed column
// per output column plus an index on the score for ad-hoc queries.
func WriteSQLite(path string, table pipeline.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	_ = os.Remove(path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	defs := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		defs = append(defs, fmt.Sprintf("%q %s", col, columnType(col)))
	}
	if _, err := db.Exec(`CREATE TABLE "shortlist" (` + strings.Join(defs, ", ") + `)`); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	quoted := make([]string, len(table.Columns))
	placeholders := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		quoted[i] = fmt.Sprintf("%q", col)
		placeholders[i] = "?"
	}
	stmt, err := db.Prepare(`INSERT INTO "shortlist" (` + strings.Join(quoted, ", ") +
		`) VALUES (` + strings.Join(placeholders, ", ") + `)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range table.Records {
		args := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			args[i] = cellValue(rec, col)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	if _, err := db.Exec(`CREATE INDEX idx_shortlist_score ON shortlist("` + pipeline.FieldTPIScore + `")`); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// cellValue returns the record's native value for a column, nil when absent.
func cellValue(rec pipeline.Record, col string) any {
	v, ok := rec[col]
	if !ok {
		return nil
	}
	return v
}

// columnType maps output columns onto sqlite types.
func columnType(col string) string {
	switch col {
	case pipeline.FieldTPIScore:
		return "INTEGER"
	case pipeline.FieldPrice, pipeline.FieldMonthlySales, pipeline.FieldSalesGrowth,
		pipeline.FieldRatings, pipeline.FieldRevenueChange, pipeline.FieldPriceChange:
		return "REAL"
	default:
		return "TEXT"
	}
}
