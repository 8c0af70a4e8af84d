package review

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Paintersrp/citegraph/internal/paper"
)

// Update records a change made to a paper during a review session.
type Update struct {
	PaperID        string            `json:"paper_id"`
	Title          string            `json:"title"`
	Before         paper.Familiarity `json:"before"`
	After          paper.Familiarity `json:"after"`
	ImportanceFrom int               `json:"importance_from"`
	ImportanceTo   int               `json:"importance_to"`
}

func (u Update) Changed() bool {
	return u.Before != u.After || u.ImportanceFrom != u.ImportanceTo
}

// RunChecklist steps through the queue, asking the reader for a new
// familiarity level and importance rating for each paper. Empty answers keep
// the current value and "q" ends the session early.
func RunChecklist(queue []QueueItem, reader io.Reader, writer io.Writer) ([]Update, error) {
	if writer == nil {
		writer = io.Discard
	}
	if reader == nil {
		reader = strings.NewReader("")
	}

	bufReader := bufio.NewReader(reader)
	fmt.Fprintf(writer, "\n=== Review: %d papers ===\n", len(queue))

	var updates []Update
	for idx, item := range queue {
		p := item.Paper
		fmt.Fprintf(writer, "\n[%d/%d] %s (%d)\n", idx+1, len(queue), p.Title, p.Year)
		fmt.Fprintf(writer, "Why now: %s\n", item.Reason)

		update := Update{
			PaperID:        p.ID,
			Title:          p.Title,
			Before:         p.Familiarity,
			After:          p.Familiarity,
			ImportanceFrom: p.Importance,
			ImportanceTo:   p.Importance,
		}

		fmt.Fprintf(writer, "Familiarity [%s] (%s, enter keeps, q quits)\n> ", p.Familiarity.Label(), levelHint())
		answer, eof, err := readAnswer(bufReader)
		if err != nil {
			return updates, err
		}
		if strings.EqualFold(answer, "q") {
			break
		}
		if answer != "" {
			level, err := paper.ParseFamiliarity(answer)
			if err != nil {
				fmt.Fprintf(writer, "%v, keeping %s\n", err, p.Familiarity.Label())
			} else {
				update.After = level
			}
		}

		if !eof {
			fmt.Fprintf(writer, "Importance [%s] (1-5, enter keeps)\n> ", importanceLabel(p.Importance))
			answer, eof, err = readAnswer(bufReader)
			if err != nil {
				return updates, err
			}
			if strings.EqualFold(answer, "q") {
				eof = true
			} else if answer != "" {
				rating, convErr := strconv.Atoi(answer)
				if convErr != nil || rating < 1 || rating > 5 {
					fmt.Fprintf(writer, "Importance must be 1-5, keeping %s\n", importanceLabel(p.Importance))
				} else {
					update.ImportanceTo = rating
				}
			}
		}

		if update.Changed() {
			updates = append(updates, update)
		}
		if eof {
			break
		}
	}

	fmt.Fprintf(writer, "\nReview complete. %d papers updated.\n", len(updates))
	return updates, nil
}

func readAnswer(r *bufio.Reader) (string, bool, error) {
	input, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	return strings.TrimSpace(input), err == io.EOF, nil
}

func levelHint() string {
	hints := make([]string, len(paper.FamiliarityLevels))
	for i, level := range paper.FamiliarityLevels {
		hints[i] = fmt.Sprintf("%d=%s", i, level.Label())
	}
	return strings.Join(hints, " ")
}
