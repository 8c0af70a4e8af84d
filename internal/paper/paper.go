package paper

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrInvalidPaper = errors.New("invalid paper")

// Category is the closed set of research areas a paper can be filed under.
type Category string

const (
	CategoryCompression  Category = "compression"
	CategoryAutoencoder  Category = "autoencoder"
	CategoryQuantization Category = "quantization"
	CategoryTransformer  Category = "transformer"
	CategoryCNN          Category = "cnn"
	CategoryOther        Category = "other"
)

var Categories = []Category{
	CategoryCompression,
	CategoryAutoencoder,
	CategoryQuantization,
	CategoryTransformer,
	CategoryCNN,
	CategoryOther,
}

func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

func (c Category) String() string {
	return string(c)
}

func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" {
		return CategoryOther, nil
	}
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// Familiarity is the reader's self-rated knowledge of a paper. The empty value
// means unset and ranks the same as FamiliarityNotStarted.
type Familiarity string

const (
	FamiliarityNotStarted Familiarity = "not_started"
	FamiliarityDifficult  Familiarity = "difficult"
	FamiliarityModerate   Familiarity = "moderate"
	FamiliarityFamiliar   Familiarity = "familiar"
	FamiliarityExpert     Familiarity = "expert"
)

var FamiliarityLevels = []Familiarity{
	FamiliarityNotStarted,
	FamiliarityDifficult,
	FamiliarityModerate,
	FamiliarityFamiliar,
	FamiliarityExpert,
}

// Rank returns the ordinal of the level, 0 for not_started through 4 for
// expert. Unknown and unset levels rank 0.
func (f Familiarity) Rank() int {
	if i := slices.Index(FamiliarityLevels, f); i >= 0 {
		return i
	}
	return 0
}

func (f Familiarity) IsSet() bool {
	return f != ""
}

func (f Familiarity) IsValid() bool {
	return f == "" || slices.Contains(FamiliarityLevels, f)
}

// Effective resolves the unset level to not_started.
func (f Familiarity) Effective() Familiarity {
	if f == "" {
		return FamiliarityNotStarted
	}
	return f
}

// Label is the human form used in reasons and tables.
func (f Familiarity) Label() string {
	return strings.ReplaceAll(string(f.Effective()), "_", " ")
}

func ParseFamiliarity(raw string) (Familiarity, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	if normalized == "" {
		return "", nil
	}
	for i, level := range FamiliarityLevels {
		if string(level) == normalized || fmt.Sprint(i) == normalized {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown familiarity level %q", raw)
}

type Paper struct {
	ID          string      `yaml:"id"                          json:"id"`
	Title       string      `yaml:"title"                       json:"title"`
	Authors     []string    `yaml:"authors"                     json:"authors"`
	Year        int         `yaml:"year"                        json:"year"`
	Category    Category    `yaml:"category"                    json:"category"`
	Tags        []string    `yaml:"tags"                        json:"tags"`
	Familiarity Familiarity `yaml:"familiarity_level,omitempty" json:"familiarity_level,omitempty"`
	Importance  int         `yaml:"importance_rating,omitempty" json:"importance_rating,omitempty"`
	Favorite    bool        `yaml:"is_favorite,omitempty"       json:"is_favorite,omitempty"`

	Abstract     string    `yaml:"-" json:"abstract,omitempty"`
	Notes        string    `yaml:"-" json:"notes,omitempty"`
	Path         string    `yaml:"-" json:"-"`
	Added        time.Time `yaml:"-" json:"added,omitempty"`
	LastReviewed time.Time `yaml:"-" json:"last_reviewed,omitempty"`
}

// Validate applies the boundary checks the graph core relies on having been
// made upstream.
func (p Paper) Validate() error {
	var problems []string
	if strings.TrimSpace(p.ID) == "" {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		problems = append(problems, "title is required")
	}
	if len(p.Authors) == 0 {
		problems = append(problems, "at least one author is required")
	}
	if p.Year < 0 {
		problems = append(problems, "year must not be negative")
	}
	if p.Category != "" && !p.Category.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown category %q", p.Category))
	}
	if !p.Familiarity.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown familiarity level %q", p.Familiarity))
	}
	if p.Importance != 0 && (p.Importance < 1 || p.Importance > 5) {
		problems = append(problems, "importance rating must be between 1 and 5")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %s", ErrInvalidPaper, p.ID, strings.Join(problems, "; "))
}

// TagSet returns the lowercased tags of the paper for matching.
func (p Paper) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tags))
	for _, tag := range p.Tags {
		tag = NormalizeTag(tag)
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return set
}

func (p Paper) HasTag(tag string) bool {
	_, ok := p.TagSet()[NormalizeTag(tag)]
	return ok
}

// FirstAuthor returns the first listed author or an empty string.
func (p Paper) FirstAuthor() string {
	if len(p.Authors) == 0 {
		return ""
	}
	return p.Authors[0]
}

// Citation renders a short "Author et al. (Year). Title." reference.
func (p Paper) Citation() string {
	var author string
	switch len(p.Authors) {
	case 0:
		author = "Unknown"
	case 1:
		author = p.Authors[0]
	case 2:
		author = p.Authors[0] + " and " + p.Authors[1]
	default:
		author = p.Authors[0] + " et al."
	}
	return fmt.Sprintf("%s (%d). %s.", author, p.Year, strings.TrimSuffix(p.Title, "."))
}

// Clone returns a deep copy so callers can mutate slices without touching
// shared snapshots.
func (p Paper) Clone() Paper {
	p.Authors = append([]string(nil), p.Authors...)
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags lowercases, trims, drops empties and duplicates, and sorts.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = NormalizeTag(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}

// Index maps paper ids to their records. Later duplicates win.
func Index(papers []Paper) map[string]Paper {
	byID := make(map[string]Paper, len(papers))
	for _, p := range papers {
		byID[p.ID] = p
	}
	return byID
}
