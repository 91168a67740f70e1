package assistant

import (
	"fmt"
	"html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"datalens/domain/chat"
)

// RenderMarkdown converts assistant markdown to HTML for the web client
func RenderMarkdown(src string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(src), p, renderer))
}

// TranscriptHTML renders a conversation as an HTML fragment for export.
// User turns are escaped verbatim; assistant turns are rendered from
// markdown; tool messages are omitted.
func TranscriptHTML(conv *chat.Conversation, messages []*chat.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<article class=\"transcript\">\n<h1>%s</h1>\n", html.EscapeString(conv.Title))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleUser:
			fmt.Fprintf(&b, "<section class=\"turn user\"><p>%s</p></section>\n", html.EscapeString(m.Content))
		case chat.RoleAssistant:
			fmt.Fprintf(&b, "<section class=\"turn assistant\">%s</section>\n", RenderMarkdown(m.Content))
		}
	}
	b.WriteString("</article>\n")
	return b.String()
}
