package state

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	corpussvc "github.com/Paintersrp/citegraph/internal/services/corpus"
)

// CorpusStatsMsg notifies subscribers that the root status line was refreshed
// from the corpus service.
type CorpusStatsMsg struct {
	Line string
}

// CorpusHeartbeatCmd updates the shared root status line from the corpus
// statistics and returns a message consumers can use to rerender.
func (s *State) CorpusHeartbeatCmd() tea.Cmd {
	if s == nil {
		return nil
	}

	return func() tea.Msg {
		var line string
		if s.Corpus != nil {
			line = formatCorpusStatus(s.Corpus.Stats())
		}
		if s.RootStatus != nil {
			s.RootStatus.Set(line)
		}
		return CorpusStatsMsg{Line: line}
	}
}

func formatCorpusStatus(stats corpussvc.Stats) string {
	parts := []string{
		fmt.Sprintf("Corpus: rev %d", stats.Revision),
		fmt.Sprintf("%d papers", stats.Papers),
		fmt.Sprintf("%d links", stats.Relationships),
	}
	if stats.Pending > 0 {
		parts = append(parts, fmt.Sprintf("pending %d", stats.Pending))
	}
	if !stats.LastRebuild.IsZero() {
		parts = append(parts, fmt.Sprintf("loaded %s", formatRebuildTime(stats.LastRebuild)))
	}

	return strings.Join(parts, " · ")
}

func formatRebuildTime(t time.Time) string {
	return t.Local().Format("15:04")
}
