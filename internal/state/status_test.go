package state

import (
	"testing"
	"time"

	corpussvc "github.com/Paintersrp/citegraph/internal/services/corpus"
)

func TestFormatCorpusStatus(t *testing.T) {
	t.Parallel()

	line := formatCorpusStatus(corpussvc.Stats{Revision: 3, Papers: 12, Relationships: 7})
	if line != "Corpus: rev 3 · 12 papers · 7 links" {
		t.Fatalf("unexpected status line %q", line)
	}

	loaded := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	line = formatCorpusStatus(corpussvc.Stats{Revision: 4, Papers: 1, Pending: 2, LastRebuild: loaded})
	want := "Corpus: rev 4 · 1 papers · 0 links · pending 2 · loaded 09:30"
	if line != want {
		t.Fatalf("expected %q, got %q", want, line)
	}
}

func TestCorpusHeartbeatCmdSetsRootStatus(t *testing.T) {
	t.Parallel()

	s := &State{RootStatus: &RootStatus{}}
	msg := s.CorpusHeartbeatCmd()()
	stats, ok := msg.(CorpusStatsMsg)
	if !ok {
		t.Fatalf("unexpected message %#v", msg)
	}
	if stats.Line != s.RootStatus.Line() {
		t.Fatalf("root status %q does not match message %q", s.RootStatus.Line(), stats.Line)
	}
}
