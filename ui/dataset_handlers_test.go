package ui

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadDataset(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("dataset", "sales.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(salesCSV(12)))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, float64(12), body["rows"])
	assert.Len(t, body["columns"], 4)
}

func TestUploadDataset_NoFile(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file uploaded")
}

func TestUploadDataset_BadExtension(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("dataset", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only CSV")
}

func TestUploadDataset_Unparseable(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("dataset", "empty.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(""))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestListAndDeleteDatasets(t *testing.T) {
	srv := newTestServer(t)

	first := uploadCSV(t, srv, "a.csv", salesCSV(12))
	uploadCSV(t, srv, "b.csv", salesCSV(15))

	rec := doJSON(t, srv, http.MethodGet, "/api/datasets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["count"])

	rec = doJSON(t, srv, http.MethodDelete, "/api/datasets/"+first, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/datasets/"+first, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/datasets", nil)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestGetDataset_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/datasets/ghost", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestPreviewDataset(t *testing.T) {
	srv := newTestServer(t)
	id := uploadCSV(t, srv, "sales.csv", salesCSV(12))

	rec := doJSON(t, srv, http.MethodGet, "/api/datasets/"+id+"/preview?rows=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	rows, ok := body["rows"].([]interface{})
	require.True(t, ok, rec.Body.String())
	assert.Len(t, rows, 3)
	assert.Len(t, body["headers"], 4)
}
