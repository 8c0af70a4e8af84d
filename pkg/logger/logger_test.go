package logger

import "testing"

type recorder struct {
	lines []string
}

func (r *recorder) Debug(message string, _ ...any) { r.lines = append(r.lines, "debug:"+message) }
func (r *recorder) Info(message string, _ ...any)  { r.lines = append(r.lines, "info:"+message) }
func (r *recorder) Warn(message string, _ ...any)  { r.lines = append(r.lines, "warn:"+message) }
func (r *recorder) Error(message string, _ ...any) { r.lines = append(r.lines, "error:"+message) }

func TestDispatchesToEveryBackend(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	Init(first, second)
	defer Init()

	Info("loaded corpus", "papers", 3)
	Error("sync failed")

	for _, r := range []*recorder{first, second} {
		if len(r.lines) != 2 || r.lines[0] != "info:loaded corpus" || r.lines[1] != "error:sync failed" {
			t.Fatalf("unexpected lines: %v", r.lines)
		}
	}
}
