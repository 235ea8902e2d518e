// Package handlers provides HTTP handlers for the selection API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/export"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/ingest"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/observability"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

// Options holds handler tunables.
type Options struct {
	MaxUploadBytes int64
	SheetName      string
	WorkbookName   string
}

// SelectionHandler runs the merge-and-rank pipeline over uploaded spreadsheets.
type SelectionHandler struct {
	logger   *observability.Logger
	reader   *ingest.Reader
	pipeline *pipeline.Pipeline
	opts     Options
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(logger *observability.Logger, reader *ingest.Reader, p *pipeline.Pipeline, opts Options) *SelectionHandler {
	if logger == nil {
		logger = observability.DefaultLogger()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 64 << 20
	}
	return &SelectionHandler{
		logger:   logger,
		reader:   reader,
		pipeline: p,
		opts:     opts,
	}
}

// SelectionResponseDTO is the JSON shape of a completed run.
type SelectionResponseDTO struct {
	RunID   string           `json:"runId"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Stats   StatsDTO         `json:"stats"`
}

// StatsDTO summarizes the run.
type StatsDTO struct {
	Sources      int `json:"sources"`
	RawRows      int `json:"rawRows"`
	UniqueRows   int `json:"uniqueRows"`
	FilteredRows int `json:"filteredRows"`
	CoercedCells int `json:"coercedCells"`
}

// Select handles POST /api/v1/select. Each multipart file field is one source
// spreadsheet; the field name is the ranking-list tag. ?format=xlsx streams
// the shortlist workbook instead of JSON.
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart body", err.Error())
		return
	}

	// Parts are consumed in request order. The dedup stage keeps the first
	// occurrence of an identifier, so source order must match the upload.
	var tables []pipeline.SourceTable
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid multipart body", err.Error())
			return
		}
		if part.FileName() == "" {
			part.Close()
			continue
		}

		tbl, err := h.reader.ReadFrom(part.FormName(), part.FileName(), part)
		part.Close()
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "unreadable source", err.Error())
			return
		}
		tables = append(tables, tbl)
	}

	if len(tables) == 0 {
		h.writeError(w, http.StatusBadRequest, "no input files", "upload at least one spreadsheet as a multipart file field")
		return
	}

	result, err := h.pipeline.Run(ctx, tables)
	if err != nil {
		status := http.StatusInternalServerError
		var confErr *pipeline.ConfigurationError
		var ingErr *pipeline.IngestionError
		switch {
		case errors.As(err, &confErr):
			status = http.StatusUnprocessableEntity
		case errors.As(err, &ingErr):
			status = http.StatusBadRequest
		}
		h.writeError(w, status, "selection failed", err.Error())
		return
	}

	h.logger.Info().
		Str("run_id", result.RunID.String()).
		Int("sources", result.Stats.Sources).
		Int("shortlist", len(result.Table.Records)).
		Msg("Selection run complete")

	if wantsWorkbook(r) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.opts.WorkbookName))
		if err := export.WriteWorkbookTo(w, h.opts.SheetName, result.Table); err != nil {
			h.logger.Error().Err(err).Msg("Failed to stream workbook")
		}
		return
	}

	rows := make([]map[string]any, 0, len(result.Table.Records))
	for _, rec := range result.Table.Records {
		rows = append(rows, map[string]any(rec))
	}

	resp := SelectionResponseDTO{
		RunID:   result.RunID.String(),
		Columns: result.Table.Columns,
		Rows:    rows,
		Stats: StatsDTO{
			Sources:      result.Stats.Sources,
			RawRows:      result.Stats.RawRows,
			UniqueRows:   result.Stats.UniqueRows,
			FilteredRows: result.Stats.FilteredRows,
			CoercedCells: result.Stats.CoercedCells,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// wantsWorkbook reports whether the caller asked for the xlsx attachment,
// either via ?format=xlsx or the spreadsheet media type in Accept.
func wantsWorkbook(r *http.Request) bool {
	if r.URL.Query().Get("format") == "xlsx" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "spreadsheetml")
}

func (h *SelectionHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
