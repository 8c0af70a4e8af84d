// Package render turns papers into markdown and terminal output shared by
// the CLI, the picker preview and the explorer.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/paper"
)

const defaultWrap = 100

// PaperMarkdown renders the details of p followed by its abstract and notes.
func PaperMarkdown(p paper.Paper) string {
	var sb strings.Builder

	title := p.Title
	if p.Favorite {
		title = "★ " + title
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "- **ID:** `%s`\n", p.ID)
	if len(p.Authors) > 0 {
		fmt.Fprintf(&sb, "- **Authors:** %s\n", strings.Join(p.Authors, ", "))
	}
	fmt.Fprintf(&sb, "- **Year:** %d\n", p.Year)
	fmt.Fprintf(&sb, "- **Category:** %s\n", p.Category)
	if len(p.Tags) > 0 {
		fmt.Fprintf(&sb, "- **Tags:** %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintf(&sb, "- **Familiarity:** %s\n", p.Familiarity.Label())
	if p.Importance > 0 {
		fmt.Fprintf(&sb, "- **Importance:** %d/5\n", p.Importance)
	}
	if !p.LastReviewed.IsZero() {
		fmt.Fprintf(&sb, "- **Last reviewed:** %s\n", p.LastReviewed.Format("2006-01-02"))
	}

	if p.Abstract != "" {
		fmt.Fprintf(&sb, "\n## Abstract\n\n%s\n", p.Abstract)
	}
	if notes := strings.TrimSpace(p.Notes); notes != "" && !onlyAbstract(notes, p.Abstract) {
		fmt.Fprintf(&sb, "\n## Notes\n\n%s\n", notes)
	}
	return sb.String()
}

// ConnectionsMarkdown renders a paper's connections split by direction.
func ConnectionsMarkdown(connections []graph.Connection) string {
	if len(connections) == 0 {
		return "_No connections._\n"
	}

	outgoing, incoming := graph.Split(connections)
	var sb strings.Builder
	section := func(title string, items []graph.Connection) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		for _, c := range items {
			fmt.Fprintf(&sb, "- **%s** %s (%d) · strength %d\n",
				c.Relationship.Type.Label(), c.Other.Title, c.Other.Year, c.Relationship.Strength)
			if c.Relationship.Description != "" {
				fmt.Fprintf(&sb, "  %s\n", c.Relationship.Description)
			}
		}
		sb.WriteString("\n")
	}
	section("Outgoing", outgoing)
	section("Incoming", incoming)
	return sb.String()
}

// Terminal renders markdown for a terminal of the given width. A width of
// zero or less uses the default wrap.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = defaultWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.ANSI256),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

// Truncate shortens s to width cells, appending an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

// onlyAbstract reports whether notes hold nothing beyond the abstract, with
// or without its heading.
func onlyAbstract(notes, abstract string) bool {
	abstract = strings.Join(strings.Fields(abstract), " ")
	body := strings.TrimSpace(strings.TrimPrefix(notes, "## Abstract"))
	return strings.Join(strings.Fields(body), " ") == abstract
}
