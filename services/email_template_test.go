package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailContentRender(t *testing.T) {
	body := emailContent{
		Subject:    "Deliverable due soon: <Plan>",
		Paragraphs: []string{"Hello Ada,", "", "The deliverable **Site plan** is late."},
		Meta:       []emailMetaItem{{Label: "Format", Value: "pdf"}, {Label: "Empty", Value: " "}},
		ButtonText: "Open",
		ButtonURL:  "https://example.com/?a=1&b=2",
	}.render()

	assert.Contains(t, body, "<title>Deliverable due soon: &lt;Plan&gt;</title>")
	assert.Contains(t, body, "<strong>Site plan</strong>")
	assert.Contains(t, body, ">pdf</td>")
	assert.NotContains(t, body, "Empty")
	assert.Contains(t, body, `href="https://example.com/?a=1&amp;b=2"`)
}

func TestRenderParagraphLeavesUnbalancedMarkers(t *testing.T) {
	assert.Equal(t, "a **b", renderParagraph("a **b"))
	assert.Equal(t, "x &lt;y&gt;<br />z", renderParagraph("x <y>\nz"))
}
