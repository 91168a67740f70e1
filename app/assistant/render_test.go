package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"datalens/domain/chat"
	"datalens/domain/core"
)

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Findings\n\nColumn **a** trends upward.")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>a</strong>")
}

func TestTranscriptHTML(t *testing.T) {
	conv := &chat.Conversation{
		ID:    "conv-1",
		Title: "Sales & revenue",
	}
	messages := []*chat.Message{
		{ID: "m-1", Role: chat.RoleUser, Content: "<script>alert(1)</script>", CreatedAt: core.Now()},
		{ID: "m-2", Role: chat.RoleAssistant, Content: "All **clear**.", CreatedAt: core.Now()},
		{ID: "m-3", Role: chat.RoleTool, Content: `{"raw":"data"}`, CreatedAt: core.Now()},
	}

	out := TranscriptHTML(conv, messages)

	assert.Contains(t, out, "Sales &amp; revenue")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "<strong>clear</strong>")
	assert.NotContains(t, out, `{"raw":"data"}`)
}
