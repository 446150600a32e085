// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pfortes/prisma-screen/internal/table"
)

// Styles holds the lipgloss styles used when rendering records and prompts.
type Styles struct {
	Header  lipgloss.Style
	Label   lipgloss.Style
	Keyword lipgloss.Style
	Hint    lipgloss.Style
	Notice  lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),

		Label: lipgloss.NewStyle().
			Bold(true),

		Keyword: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F5F")),

		Hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#737373")).
			Italic(true),

		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")),
	}
}

// HighlightKeywords flags every case-insensitive occurrence of the keywords
// in text with the given style, preserving the original casing.
func HighlightKeywords(text string, keywords []string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(kw))
		if err != nil {
			continue
		}
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return style.Render(m)
		})
	}
	return text
}

const notAvailable = "not available"

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// render prints one record's bibliographic metadata and its abstract with
// the configured keywords flagged.
func (s *Session) render(row *table.Row, n, total int) {
	rec := row.Record

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.styles.Header.Render(
		fmt.Sprintf("--- Record %d of %d (pending) ---", n, total)))
	fmt.Fprintf(s.out, "%s %s\n", s.styles.Label.Render("ID:"), rec.ID)
	fmt.Fprintf(s.out, "%s\n%s\n", s.styles.Label.Render("TITLE:"), orNotAvailable(rec.Title))
	fmt.Fprintf(s.out, "%s\n%s\n", s.styles.Label.Render("AUTHORS:"), orNotAvailable(truncate(rec.Authors, 60)))
	fmt.Fprintf(s.out, "%s\n%s\n", s.styles.Label.Render("KEYWORDS:"), orNotAvailable(rec.Keywords))
	fmt.Fprintf(s.out, "%s %s\n", s.styles.Label.Render("DOI:"), orNotAvailable(rec.DOI))
	if rec.Journal != "" || rec.Year != 0 {
		fmt.Fprintf(s.out, "%s %s (%d)\n", s.styles.Label.Render("SOURCE:"), rec.Journal, rec.Year)
	}

	fmt.Fprintf(s.out, "%s\n", s.styles.Label.Render("ABSTRACT (keywords flagged):"))
	abstract := orNotAvailable(rec.Abstract)
	if rec.Abstract != "" {
		abstract = HighlightKeywords(rec.Abstract, s.cfg.Keywords, s.styles.Keyword)
	}
	fmt.Fprintln(s.out, abstract)
}

// renderCriteriaSummary echoes the answers just collected so the operator
// can confirm them before deciding.
func (s *Session) renderCriteriaSummary(cls table.Classification) {
	fmt.Fprintln(s.out, s.styles.Header.Render("=== SELECTED CRITERIA ==="))
	for _, name := range s.sch.BoolCriteria {
		value := "no"
		if cls.Bool[name] {
			value = "yes"
		}
		fmt.Fprintf(s.out, "  %-16s %s\n", name, value)
	}
	for _, tc := range s.sch.TextCriteria {
		value := cls.Text[tc.Name]
		if value == "" {
			value = "(not specified)"
		}
		fmt.Fprintf(s.out, "  %-16s %s\n", tc.Name, truncate(value, 40))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
