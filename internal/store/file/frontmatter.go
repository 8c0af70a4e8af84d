package file

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/citegraph/internal/paper"
)

var frontMatterPattern = regexp.MustCompile(`(?ms)^---\s*\n(.*?)\n---\s*\n?`)

const dateLayout = "2006-01-02"

// frontMatter is the YAML header of a paper file. Dates are kept as strings
// so hand-written values like "March 3, 2024" survive a round trip through
// dateparse.
type frontMatter struct {
	paper.Paper  `yaml:",inline"`
	Added        string `yaml:"added,omitempty"`
	LastReviewed string `yaml:"last_reviewed,omitempty"`
}

func splitFrontMatter(data []byte) ([]byte, []byte) {
	loc := frontMatterPattern.FindSubmatchIndex(data)
	if len(loc) < 4 {
		return nil, data
	}
	return data[loc[2]:loc[3]], data[loc[1]:]
}

// decodePaper parses a paper file. The caller fills in fallbacks such as the
// id derived from the file name.
func decodePaper(data []byte) (paper.Paper, error) {
	fm, body := splitFrontMatter(data)

	var header frontMatter
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, &header); err != nil {
			return paper.Paper{}, fmt.Errorf("parse front matter: %w", err)
		}
	}

	p := header.Paper
	if header.Added != "" {
		added, err := parseDate(header.Added)
		if err != nil {
			return paper.Paper{}, fmt.Errorf("parse added: %w", err)
		}
		p.Added = added
	}
	if header.LastReviewed != "" {
		reviewed, err := parseDate(header.LastReviewed)
		if err != nil {
			return paper.Paper{}, fmt.Errorf("parse last_reviewed: %w", err)
		}
		p.LastReviewed = reviewed
	}

	p.Tags = paper.NormalizeTags(p.Tags)
	if p.Category == "" {
		p.Category = paper.CategoryOther
	}
	p.Notes = strings.TrimSpace(string(body))
	p.Abstract = extractAbstract(body)
	return p, nil
}

func encodePaper(p paper.Paper) ([]byte, error) {
	header := frontMatter{Paper: p}
	header.Tags = paper.NormalizeTags(p.Tags)
	if !p.Added.IsZero() {
		header.Added = p.Added.Format(dateLayout)
	}
	if !p.LastReviewed.IsZero() {
		header.LastReviewed = p.LastReviewed.Format(dateLayout)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(header); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	notes := strings.TrimSpace(p.Notes)
	// The abstract lives in the body; write it when the notes do not already
	// carry it.
	if abstract := strings.TrimSpace(p.Abstract); abstract != "" && extractAbstract([]byte(notes)) != abstract {
		buf.WriteString("\n## Abstract\n\n")
		buf.WriteString(abstract)
		buf.WriteString("\n")
	}
	if notes != "" {
		buf.WriteString("\n")
		buf.WriteString(notes)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// extractAbstract returns the first paragraph under an "Abstract" heading,
// or the first paragraph of the body when there is no such heading.
func extractAbstract(body []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(body))

	var first string
	inAbstract := false
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			inAbstract = strings.EqualFold(strings.TrimSpace(string(n.Text(body))), "abstract")
		case *ast.Paragraph:
			content := paragraphText(n, body)
			if inAbstract {
				return content
			}
			if first == "" {
				first = content
			}
		}
	}
	return first
}

func paragraphText(n ast.Node, source []byte) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		if line := strings.TrimSpace(string(segment.Value(source))); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
