package explore

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/Paintersrp/citegraph/internal/graph"
	"github.com/Paintersrp/citegraph/internal/paper"
)

type PaperItem struct {
	paper  paper.Paper
	degree int
	hidden bool
}

func (i PaperItem) Title() string {
	title := i.paper.Title
	if i.paper.Favorite {
		title = "★ " + title
	}
	if i.hidden {
		title += " (hidden)"
	}
	return title
}

func (i PaperItem) Description() string {
	tags := "No tags"
	if len(i.paper.Tags) > 0 {
		tags = strings.Join(i.paper.Tags, ", ")
	}
	return fmt.Sprintf("%s %d · %s · %d links · %s",
		i.paper.FirstAuthor(), i.paper.Year, i.paper.Category, i.degree, tags)
}

func (i PaperItem) FilterValue() string {
	parts := []string{i.paper.Title, i.paper.ID, string(i.paper.Category)}
	parts = append(parts, i.paper.Authors...)
	parts = append(parts, i.paper.Tags...)
	return strings.Join(parts, " ")
}

func (i PaperItem) Paper() paper.Paper {
	return i.paper
}

// buildItems lists papers in snapshot order. Hidden papers are left out
// unless showHidden is set.
func buildItems(
	papers []paper.Paper,
	adj *graph.Adjacency,
	hidden map[string]bool,
	tags func(string) []string,
	showHidden bool,
) []list.Item {
	items := make([]list.Item, 0, len(papers))
	for _, p := range papers {
		if hidden[p.ID] && !showHidden {
			continue
		}
		if tags != nil {
			p.Tags = tags(p.ID)
		}
		items = append(items, PaperItem{
			paper:  p,
			degree: adj.Degree(p.ID),
			hidden: hidden[p.ID],
		})
	}
	return items
}
