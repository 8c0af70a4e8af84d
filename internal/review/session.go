package review

import (
	"context"
	"fmt"
	"time"

	"github.com/Paintersrp/citegraph/internal/paper"
)

// Updater persists the ratings a review session changes.
type Updater interface {
	SetFamiliarity(ctx context.Context, id string, level paper.Familiarity) (paper.Paper, error)
	SetImportance(ctx context.Context, id string, rating int) (paper.Paper, error)
	MarkReviewed(ctx context.Context, id string, at time.Time) (paper.Paper, error)
}

// ApplySession writes updates through u and stamps every reviewed paper with
// at. Papers are marked reviewed even when their ratings did not change.
func ApplySession(ctx context.Context, u Updater, updates []Update, reviewed []string, at time.Time) error {
	for _, update := range updates {
		if update.Before != update.After && update.After.IsSet() {
			if _, err := u.SetFamiliarity(ctx, update.PaperID, update.After); err != nil {
				return fmt.Errorf("update %s: %w", update.PaperID, err)
			}
		}
		if update.ImportanceFrom != update.ImportanceTo {
			if _, err := u.SetImportance(ctx, update.PaperID, update.ImportanceTo); err != nil {
				return fmt.Errorf("update %s: %w", update.PaperID, err)
			}
		}
	}

	for _, id := range reviewed {
		if _, err := u.MarkReviewed(ctx, id, at); err != nil {
			return fmt.Errorf("mark %s reviewed: %w", id, err)
		}
	}
	return nil
}

// ReviewedIDs returns the ids of the queue items a session visited, which is
// every item up to and including the last updated one.
func ReviewedIDs(queue []QueueItem, updates []Update, visited int) []string {
	if visited > len(queue) {
		visited = len(queue)
	}
	changed := make(map[string]bool, len(updates))
	for _, u := range updates {
		changed[u.PaperID] = true
	}
	for i := len(queue) - 1; i >= visited; i-- {
		if changed[queue[i].Paper.ID] {
			visited = i + 1
			break
		}
	}

	ids := make([]string, 0, visited)
	for _, item := range queue[:visited] {
		ids = append(ids, item.Paper.ID)
	}
	return ids
}
