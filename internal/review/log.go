package review

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	defaultLogDir    = "reviews"
	logFilePattern   = regexp.MustCompile(`^review-(\d{4}-\d{2}-\d{2})\.md$`)
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`)
)

// LogMetadata captures the derived information about a persisted review log.
type LogMetadata struct {
	Path      string
	Filename  string
	Timestamp time.Time
	Sessions  int
	Preview   []string
}

// EnsureLogDir resolves and creates the directory used for review logs. The
// configured path may be absolute or relative to the library and must resolve
// inside it. When empty, "reviews" inside the library is used.
func EnsureLogDir(library, configured string) (string, error) {
	library = strings.TrimSpace(library)
	if library == "" {
		return "", fmt.Errorf("library directory is not configured")
	}

	dir := strings.TrimSpace(configured)
	if dir == "" {
		dir = filepath.Join(library, defaultLogDir)
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(library, dir)
	}

	rel, err := filepath.Rel(library, dir)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("review directory %q must be inside the library", dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// WriteMarkdownLog appends a session entry to the day's log file inside dir
// and returns the written path.
func WriteMarkdownLog(dir string, updates []Update, queue []QueueItem, ts time.Time) (string, error) {
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("review-%s.md", ts.Format("2006-01-02")))
	if err := appendReviewLog(path, renderReviewLogContent(updates, queue, ts)); err != nil {
		return "", err
	}
	return path, nil
}

func renderReviewLogContent(updates []Update, queue []QueueItem, ts time.Time) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "## Review - %s\n\n", ts.Format(time.RFC3339))

	builder.WriteString("### Updates\n\n")
	if len(updates) == 0 {
		builder.WriteString("- _No papers changed._\n")
	}
	for _, u := range updates {
		var changes []string
		if u.Before != u.After {
			changes = append(changes, fmt.Sprintf("familiarity %s -> %s", u.Before.Label(), u.After.Label()))
		}
		if u.ImportanceFrom != u.ImportanceTo {
			changes = append(changes, fmt.Sprintf(
				"importance %s -> %s",
				importanceLabel(u.ImportanceFrom),
				importanceLabel(u.ImportanceTo),
			))
		}
		fmt.Fprintf(&builder, "- **%s** (`%s`): %s\n", u.Title, u.PaperID, strings.Join(changes, ", "))
	}

	builder.WriteString("\n### Queue\n\n")
	if len(queue) == 0 {
		builder.WriteString("- _Nothing queued._\n")
	}
	for _, item := range queue {
		fmt.Fprintf(&builder, "- %s (%d): %s\n", item.Paper.Title, item.Paper.Year, item.Reason)
	}

	return builder.String()
}

func appendReviewLog(path, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	entry := strings.TrimRight(content, "\n") + "\n"
	if info.Size() > 0 {
		entry = "\n" + entry
	}

	_, err = file.WriteString(entry)
	return err
}

// ListReviewLogs returns the review logs in dir, newest first. The timestamp
// is the latest session heading in the file, falling back to the date in the
// filename and then to the modification time.
func ListReviewLogs(dir string) ([]LogMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var logs []LogMetadata
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		match := logFilePattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}

		path := filepath.Join(dir, name)
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		meta := LogMetadata{Path: path, Filename: name, Timestamp: info.ModTime().UTC()}
		if day, err := time.Parse("2006-01-02", match[1]); err == nil {
			meta.Timestamp = day
		}
		stamps := timestampPattern.FindAllString(string(content), -1)
		meta.Sessions = len(stamps)
		if len(stamps) > 0 {
			if ts, err := time.Parse(time.RFC3339, stamps[len(stamps)-1]); err == nil {
				meta.Timestamp = ts
			}
		}
		meta.Preview = previewLines(string(content), 3)
		logs = append(logs, meta)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	return logs, nil
}

func previewLines(content string, limit int) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		lines = append(lines, strings.TrimPrefix(line, "- "))
		if len(lines) == limit {
			break
		}
	}
	return lines
}
