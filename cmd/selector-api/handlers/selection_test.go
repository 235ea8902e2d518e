package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/ingest"
	"github.com/frank19990603-cmyk/model-for-amazon-2.0/internal/pipeline"
)

func newTestHandler(t *testing.T) *SelectionHandler {
	t.Helper()
	aliases := map[string]string{
		pipeline.FieldASIN:         "ASIN",
		pipeline.FieldTitle:        "标题",
		pipeline.FieldPrice:        "价格",
		pipeline.FieldMonthlySales: "月销量",
		pipeline.FieldSalesGrowth:  "近30天销量增长率",
	}
	p := pipeline.New(nil, pipeline.Options{Aliases: aliases})
	return NewSelectionHandler(nil, ingest.NewReader(nil), p, Options{
		SheetName:    "Top30",
		WorkbookName: "shortlist.xlsx",
	})
}

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

type uploadFile struct {
	tag     string
	content []byte
}

func multipartRequest(t *testing.T, url string, files []uploadFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.tag, f.tag+".xlsx")
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestSelectionHandler_Select_JSON(t *testing.T) {
	h := newTestHandler(t)

	wb := workbookBytes(t, [][]any{
		{"ASIN", "标题", "价格", "月销量", "近30天销量增长率"},
		{"B001", "Collapsible Colander", 25.99, 1200, "72%"},
	})
	req := multipartRequest(t, "/api/v1/select", []uploadFile{{tag: "List_A_Growth", content: wb}})
	rec := httptest.NewRecorder()

	h.Select(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SelectionResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 1, resp.Stats.Sources)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "B001", resp.Rows[0][pipeline.FieldASIN])
	assert.Equal(t, "https://www.amazon.com/dp/B001", resp.Rows[0][pipeline.FieldAmazonURL])
}

func TestSelectionHandler_Select_UploadOrderDecidesDedupWinner(t *testing.T) {
	h := newTestHandler(t)

	listA := workbookBytes(t, [][]any{
		{"ASIN", "标题", "价格", "月销量"},
		{"B001", "Colander from list A", 25.99, 1200},
	})
	listB := workbookBytes(t, [][]any{
		{"ASIN", "标题", "价格", "月销量"},
		{"B001", "Colander from list B", 18.50, 300},
	})

	// The same record appears in both uploads. The first upload must win the
	// dedup on every request, not just when a map happens to iterate that way.
	for i := 0; i < 25; i++ {
		req := multipartRequest(t, "/api/v1/select", []uploadFile{
			{tag: "list_a", content: listA},
			{tag: "list_b", content: listB},
		})
		rec := httptest.NewRecorder()

		h.Select(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp SelectionResponseDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Rows, 1)
		assert.Equal(t, "Colander from list A", resp.Rows[0][pipeline.FieldTitle])
	}
}

func TestSelectionHandler_Select_XLSX(t *testing.T) {
	h := newTestHandler(t)

	wb := workbookBytes(t, [][]any{
		{"ASIN", "标题", "价格"},
		{"B001", "Collapsible Colander", 25.99},
	})
	req := multipartRequest(t, "/api/v1/select?format=xlsx", []uploadFile{{tag: "growth", content: wb}})
	rec := httptest.NewRecorder()

	h.Select(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "shortlist.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Top30")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSelectionHandler_Select_NoFiles(t *testing.T) {
	h := newTestHandler(t)

	req := multipartRequest(t, "/api/v1/select", nil)
	rec := httptest.NewRecorder()

	h.Select(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no input files", body["error"])
	assert.NotContains(t, body, "message")
}

func TestSelectionHandler_Select_BadUpload(t *testing.T) {
	h := newTestHandler(t)

	req := multipartRequest(t, "/api/v1/select", []uploadFile{
		{tag: "growth", content: []byte("this is not a workbook")},
	})
	rec := httptest.NewRecorder()

	h.Select(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectionHandler_Select_MissingIdentifierColumn(t *testing.T) {
	h := newTestHandler(t)

	wb := workbookBytes(t, [][]any{
		{"标题", "价格"},
		{"No identifier here", 9.99},
	})
	req := multipartRequest(t, "/api/v1/select", []uploadFile{{tag: "growth", content: wb}})
	rec := httptest.NewRecorder()

	h.Select(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSelectionHandler_Select_NotMultipart(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/select", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Select(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
