package services

import (
	"fmt"
	"html/template"
	"strings"
)

type emailMetaItem struct {
	Label string
	Value string
}

// emailContent is the body of a transactional mail. Paragraphs are plain
// text; **bold** spans are rendered as <strong>.
type emailContent struct {
	Subject    string
	Paragraphs []string
	Meta       []emailMetaItem
	ButtonText string
	ButtonURL  string
	Footer     string
}

var boldReplacer = strings.NewReplacer("**", "\x00")

func renderParagraph(text string) string {
	escaped := template.HTMLEscapeString(strings.TrimSpace(text))
	escaped = strings.ReplaceAll(strings.ReplaceAll(escaped, "\r\n", "\n"), "\n", "<br />")

	parts := strings.Split(boldReplacer.Replace(escaped), "\x00")
	if len(parts)%2 == 0 {
		// unbalanced markers are left as typed
		return escaped
	}
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 {
			b.WriteString("<strong>" + part + "</strong>")
			continue
		}
		b.WriteString(part)
	}
	return b.String()
}

func (e emailContent) render() string {
	var content strings.Builder
	for _, p := range e.Paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		content.WriteString(`<p style="margin:0 0 18px 0;line-height:1.7;word-break:break-word;">`)
		content.WriteString(renderParagraph(p))
		content.WriteString("</p>\n")
	}

	var meta strings.Builder
	rows := make([]emailMetaItem, 0, len(e.Meta))
	for _, item := range e.Meta {
		if strings.TrimSpace(item.Label) != "" && strings.TrimSpace(item.Value) != "" {
			rows = append(rows, item)
		}
	}
	if len(rows) > 0 {
		meta.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="margin:0 0 24px 0;border:1px solid #e5e7eb;border-radius:12px;background-color:#f9fafb;"><tbody>`)
		for i, row := range rows {
			border := "border-bottom:1px solid #e5e7eb;"
			if i == len(rows)-1 {
				border = ""
			}
			fmt.Fprintf(&meta, `<tr><td style="padding:12px 16px;font-size:13px;color:#6b7280;width:38%%;%s">%s</td><td style="padding:12px 16px;font-size:15px;color:#111827;font-weight:600;%s">%s</td></tr>`,
				border, template.HTMLEscapeString(row.Label), border, template.HTMLEscapeString(row.Value))
		}
		meta.WriteString(`</tbody></table>`)
	}

	button := ""
	if strings.TrimSpace(e.ButtonText) != "" && strings.TrimSpace(e.ButtonURL) != "" {
		button = fmt.Sprintf(`<div style="text-align:center;margin:12px 0 24px 0;"><a href="%s" style="display:inline-block;padding:12px 28px;background-color:#4f46e5;color:#ffffff;text-decoration:none;border-radius:999px;font-weight:600;">%s</a></div>`,
			template.HTMLEscapeString(e.ButtonURL), template.HTMLEscapeString(e.ButtonText))
	}

	footer := ""
	if strings.TrimSpace(e.Footer) != "" {
		footer = fmt.Sprintf(`<div style="color:#6b7280;font-size:13px;line-height:1.7;">%s</div>`, template.HTMLEscapeString(e.Footer))
	}

	subject := template.HTMLEscapeString(e.Subject)
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
<div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
<h1 style="margin:0;font-size:22px;font-weight:700;color:#111827;text-align:center;">%s</h1>
<div style="margin-top:20px;color:#1f2937;font-size:16px;line-height:1.75;">
%s</div>
%s
%s
%s
</div>
</div>
</body>
</html>`, subject, subject, content.String(), meta.String(), button, footer)
}
