package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/shanehull/oslonotify/internal/ai"
	"github.com/shanehull/oslonotify/internal/types"
)

const dateLayout = "02 Jan 2006 15:04"

// NotificationData is everything a rendered email may show.
type NotificationData struct {
	Announcement types.Announcement
	Content      types.Content
	Analysis     *ai.Analysis
	URL          string
}

// Paragraphs splits the body on blank lines for the HTML template.
func (d NotificationData) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(d.Content.Body, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RenderedMessage is a subject with plain text and HTML bodies.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

// HTMLEmailRenderer renders notifications as HTML emails with a plain text fallback.
type HTMLEmailRenderer struct {
	tmpl *template.Template
}

// NewHTMLEmailRenderer creates a renderer with the default email template.
func NewHTMLEmailRenderer() *HTMLEmailRenderer {
	funcs := template.FuncMap{
		"formatDate": func(d NotificationData) string {
			if d.Announcement.PublishedTime.IsZero() {
				return ""
			}
			return d.Announcement.PublishedTime.Format(dateLayout)
		},
	}
	t := template.Must(template.New("email").Funcs(funcs).Parse(emailHTMLTemplate))
	return &HTMLEmailRenderer{tmpl: t}
}

// Render produces an HTML email with plain text alternative.
func (r *HTMLEmailRenderer) Render(data NotificationData) (*RenderedMessage, error) {
	var htmlBuf bytes.Buffer
	if err := r.tmpl.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}

	return &RenderedMessage{
		Subject: Subject(data),
		Text:    renderPlainText(data),
		HTML:    htmlBuf.String(),
	}, nil
}

// Subject is "<SIGN>: <title>", using the content title when present.
func Subject(data NotificationData) string {
	title := data.Content.Title
	if title == "" {
		title = data.Announcement.Title
	}
	if data.Announcement.IssuerSign == "" {
		return title
	}
	return fmt.Sprintf("%s: %s", data.Announcement.IssuerSign, title)
}

// renderPlainText produces a readable plain text version for email clients that don't support HTML.
func renderPlainText(data NotificationData) string {
	a := data.Announcement
	var sb strings.Builder

	sb.WriteString(Subject(data) + "\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	if a.IssuerName != "" {
		sb.WriteString(fmt.Sprintf("Issuer: %s\n", a.IssuerName))
	}
	if !a.PublishedTime.IsZero() {
		sb.WriteString(fmt.Sprintf("Published: %s\n", a.PublishedTime.Format(dateLayout)))
	}
	if len(a.Category) > 0 {
		sb.WriteString(fmt.Sprintf("Category: %s\n", strings.Join(a.Category, ", ")))
	}
	if a.CorrectionForMessageID != 0 {
		sb.WriteString(fmt.Sprintf("Correction of message %d\n", a.CorrectionForMessageID))
	}
	if data.URL != "" {
		sb.WriteString(fmt.Sprintf("URL: %s\n", data.URL))
	}
	sb.WriteString("\n")

	if data.Content.Body != "" {
		sb.WriteString(data.Content.Body + "\n\n")
	}

	if data.Analysis != nil {
		if len(data.Analysis.Summary) > 0 {
			sb.WriteString("AI SUMMARY\n")
			sb.WriteString(strings.Repeat("-", 20) + "\n")
			for _, s := range data.Analysis.Summary {
				sb.WriteString(fmt.Sprintf("• %s\n", s))
			}
			sb.WriteString("\n")
		}

		if len(data.Analysis.KeyFacts) > 0 {
			sb.WriteString("KEY FACTS\n")
			sb.WriteString(strings.Repeat("-", 20) + "\n")
			for _, f := range data.Analysis.KeyFacts {
				sb.WriteString(fmt.Sprintf("• [%s] %s\n", f.Category, f.Details))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
