package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startConversation(t *testing.T, srv *Server, datasetID string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/conversations", gin.H{"datasetId": datasetID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestConversationLifecycle(t *testing.T) {
	srv := newTestServer(t)
	dsID := uploadCSV(t, srv, "sales.csv", salesCSV(12))

	rec := doJSON(t, srv, http.MethodPost, "/api/conversations", gin.H{"datasetId": dsID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	conv := decodeBody(t, rec)
	convID := conv["id"].(string)
	assert.Equal(t, "New conversation", conv["title"])
	assert.Equal(t, dsID, conv["datasetId"])

	// The mock client picks the EDA tool for this prompt and then summarizes.
	rec = doJSON(t, srv, http.MethodPost, "/api/conversations/"+convID+"/messages", gin.H{
		"content": "Show me summary statistics",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	reply := decodeBody(t, rec)
	assert.Equal(t, "assistant", reply["role"])
	assert.Contains(t, reply["content"], "Analysis complete")
	calls, ok := reply["tool_calls"].([]interface{})
	require.True(t, ok, rec.Body.String())
	require.Len(t, calls, 1)
	call := calls[0].(map[string]interface{})
	assert.Equal(t, "perform_eda", call["name"])
	assert.NotNil(t, call["result"])

	rec = doJSON(t, srv, http.MethodGet, "/api/conversations/"+convID+"/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["count"])

	// First message renames the conversation.
	rec = doJSON(t, srv, http.MethodGet, "/api/conversations/"+convID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Show me summary statistics", decodeBody(t, rec)["title"])

	rec = doJSON(t, srv, http.MethodGet, "/api/conversations", nil)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = doJSON(t, srv, http.MethodDelete, "/api/conversations/"+convID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/conversations/"+convID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartConversation_UnknownDataset(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/conversations", gin.H{"datasetId": "ghost"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartConversation_MissingDatasetID(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/conversations", gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage_Validation(t *testing.T) {
	srv := newTestServer(t)
	dsID := uploadCSV(t, srv, "sales.csv", salesCSV(12))
	convID := startConversation(t, srv, dsID)

	rec := doJSON(t, srv, http.MethodPost, "/api/conversations/"+convID+"/messages", gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/conversations/ghost/messages", gin.H{
		"content": "hello",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamEndpoint(t *testing.T) {
	srv := newTestServer(t)
	dsID := uploadCSV(t, srv, "sales.csv", salesCSV(12))
	convID := startConversation(t, srv, dsID)

	req := httptest.NewRequest(http.MethodGet,
		"/api/conversations/"+convID+"/stream?message=Show+me+summary+statistics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	body := rec.Body.String()
	assert.Contains(t, body, "event:tool_call")
	assert.Contains(t, body, `"status":"complete"`)
	assert.Contains(t, body, "event:content")
	assert.Contains(t, body, "event:done")
}

func TestStreamEndpoint_Preflight(t *testing.T) {
	srv := newTestServer(t)
	dsID := uploadCSV(t, srv, "sales.csv", salesCSV(12))
	convID := startConversation(t, srv, dsID)

	// Unknown conversation fails before any SSE headers go out.
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/ghost/stream?message=hi", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	// So does a blank message.
	req = httptest.NewRequest(http.MethodGet, "/api/conversations/"+convID+"/stream?message=", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscriptEndpoint(t *testing.T) {
	srv := newTestServer(t)
	dsID := uploadCSV(t, srv, "sales.csv", salesCSV(12))
	convID := startConversation(t, srv, dsID)

	rec := doJSON(t, srv, http.MethodPost, "/api/conversations/"+convID+"/messages", gin.H{
		"content": "Describe the data",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/"+convID+"/transcript", nil)
	htmlRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(htmlRec, req)

	require.Equal(t, http.StatusOK, htmlRec.Code)
	assert.Contains(t, htmlRec.Header().Get("Content-Type"), "text/html")
	page := htmlRec.Body.String()
	assert.Contains(t, page, `<article class="transcript">`)
	assert.Contains(t, page, "Describe the data")
	assert.Contains(t, page, "Analysis complete")
}
