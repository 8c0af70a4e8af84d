package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Paintersrp/citegraph/internal/paper"
)

// QueueOptions configures queue generation.
type QueueOptions struct {
	Limit int
	// Tags keeps only papers carrying every listed tag.
	Tags []string
	// Categories keeps only papers in one of the listed categories.
	Categories []paper.Category
}

// QueueItem is one paper to revisit and the criterion that placed it.
type QueueItem struct {
	Paper  paper.Paper `json:"paper"`
	Reason string      `json:"reason"`
}

// BuildQueue orders papers from least to most familiar, then by importance
// and year, both descending. A limit of zero or less keeps every paper.
func BuildQueue(papers []paper.Paper, opts QueueOptions) []QueueItem {
	items := make([]QueueItem, 0, len(papers))
	for _, p := range papers {
		items = append(items, QueueItem{Paper: p})
	}
	items = FilterQueue(items, opts.Tags, opts.Categories)

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Paper, items[j].Paper
		if fa, fb := a.Familiarity.Rank(), b.Familiarity.Rank(); fa != fb {
			return fa < fb
		}
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.ID < b.ID
	})

	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	for i := range items {
		items[i].Reason = queueReason(items, i)
	}
	return items
}

// queueReason names the criterion that separates item i from its predecessor
// in the queue, always leading with the familiarity level.
func queueReason(items []QueueItem, i int) string {
	p := items[i].Paper
	reason := p.Familiarity.Label()
	if i == 0 {
		return withImportance(reason, p)
	}

	prev := items[i-1].Paper
	switch {
	case prev.Familiarity.Rank() != p.Familiarity.Rank():
		return withImportance(reason, p)
	case prev.Importance != p.Importance:
		return fmt.Sprintf("%s, importance %s", reason, importanceLabel(p.Importance))
	default:
		return fmt.Sprintf("%s, importance %s, published %d", reason, importanceLabel(p.Importance), p.Year)
	}
}

func withImportance(reason string, p paper.Paper) string {
	if p.Importance > 0 {
		return fmt.Sprintf("%s, importance %s", reason, importanceLabel(p.Importance))
	}
	return reason
}

func importanceLabel(rating int) string {
	if rating <= 0 {
		return "unrated"
	}
	return fmt.Sprintf("%d/5", rating)
}

// FilterQueue returns the items that carry every tag and, when categories are
// given, belong to one of them.
func FilterQueue(items []QueueItem, tags []string, categories []paper.Category) []QueueItem {
	if len(tags) == 0 && len(categories) == 0 {
		return items
	}

	filtered := make([]QueueItem, 0, len(items))
	for _, item := range items {
		if len(tags) > 0 && !containsAllTags(item.Paper.Tags, tags) {
			continue
		}
		if len(categories) > 0 && !inCategories(item.Paper.Category, categories) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func containsAllTags(tags, required []string) bool {
	lookup := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		lookup[strings.ToLower(tag)] = struct{}{}
	}

	for _, want := range required {
		if _, ok := lookup[strings.ToLower(strings.TrimSpace(want))]; !ok {
			return false
		}
	}
	return true
}

func inCategories(c paper.Category, categories []paper.Category) bool {
	for _, want := range categories {
		if c == want {
			return true
		}
	}
	return false
}
