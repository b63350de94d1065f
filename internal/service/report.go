package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"accidentapi/internal/model"
)

// ReportService renders tickets for the admin report view.
type ReportService interface {
	Markdown(ctx context.Context, ticketID string) (string, error)
	// HTML renders the Markdown report and sanitizes the result.
	HTML(ctx context.Context, ticketID string) (string, error)
}

type reportService struct {
	tickets TicketService
	md      goldmark.Markdown
	policy  *bluemonday.Policy
}

func NewReportService(tickets TicketService) ReportService {
	return &reportService{
		tickets: tickets,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:  bluemonday.UGCPolicy(),
	}
}

func (s *reportService) Markdown(ctx context.Context, ticketID string) (string, error) {
	t, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return "", err
	}
	return renderMarkdown(t), nil
}

func (s *reportService) HTML(ctx context.Context, ticketID string) (string, error) {
	md, err := s.Markdown(ctx, ticketID)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return s.policy.Sanitize(buf.String()), nil
}

func renderMarkdown(t *model.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Accident report %s\n\n", t.ID)
	fmt.Fprintf(&b, "- **Status:** %s\n", t.Status)
	fmt.Fprintf(&b, "- **Phase:** %s\n", t.Phase)
	fmt.Fprintf(&b, "- **Created:** %s\n", t.CreatedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "- **Updated:** %s\n\n", t.UpdatedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Extracted data\n\n")
	if len(t.ExtractedData) == 0 {
		b.WriteString("_Nothing extracted yet._\n\n")
	} else {
		keys := make([]string, 0, len(t.ExtractedData))
		for k := range t.ExtractedData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("| Field | Value |\n| --- | --- |\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", cell(k), cell(fmt.Sprint(t.ExtractedData[k])))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Attachments\n\n")
	if len(t.Attachments) == 0 {
		b.WriteString("_No attachments._\n\n")
	}
	for _, a := range t.Attachments {
		fmt.Fprintf(&b, "- [%s](%s) (%s, %d bytes)\n", escapeMarkdown(a.Filename), linkTarget(a.URL), escapeMarkdown(a.Type), a.Size)
	}
	if len(t.Attachments) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Transcript\n\n")
	for _, m := range t.Transcript {
		who := "Driver"
		if m.Role == model.RoleAssistant {
			who = "Assistant"
		}
		fmt.Fprintf(&b, "**%s** (%s): %s\n\n", who, m.Timestamp.Format("15:04"), escapeMarkdown(m.Content))
	}
	return b.String()
}

// Line breaks become spaces so user text cannot start a heading or list item.
var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", "&lt;", ">", "&gt;", "#", `\#`,
	"\r\n", " ", "\n", " ", "\r", " ",
)

var linkEscaper = strings.NewReplacer(
	"(", "%28", ")", "%29", " ", "%20", "<", "%3C", ">", "%3E",
	"\r", "", "\n", "",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

func cell(s string) string {
	return strings.ReplaceAll(escapeMarkdown(s), "|", `\|`)
}

// linkTarget keeps a URL inside the parentheses of a Markdown link.
func linkTarget(u string) string {
	return linkEscaper.Replace(u)
}
