package paper

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRelationshipType = errors.New("unknown relationship type")

// RelationshipType is the closed vocabulary of typed edges between papers.
type RelationshipType string

const (
	Extends      RelationshipType = "extends"
	BuildsOn     RelationshipType = "builds_on"
	ComparesWith RelationshipType = "compares_with"
	InspiredBy   RelationshipType = "inspired_by"
	Inspires     RelationshipType = "inspires"
	Challenges   RelationshipType = "challenges"
	Applies      RelationshipType = "applies"
	Related      RelationshipType = "related"
)

// Authoring records which way a relationship type is conventionally written.
type Authoring int

const (
	// AuthoredNewToOld is the common "new work -> cited work" form.
	AuthoredNewToOld Authoring = iota
	// AuthoredOldToNew is written from the earlier work to the later one.
	AuthoredOldToNew
)

// TypeInfo is the per-type row of the relationship table.
type TypeInfo struct {
	Label     string
	Verb      string
	Inverse   RelationshipType
	InputOnly bool
	Authoring Authoring
	Emphasis  float64
	Color     string
}

// AllRelationshipTypes lists every type in display order. Each entry must have
// a row in relationshipTypes.
var AllRelationshipTypes = []RelationshipType{
	Extends,
	BuildsOn,
	ComparesWith,
	InspiredBy,
	Inspires,
	Challenges,
	Applies,
	Related,
}

var relationshipTypes = map[RelationshipType]TypeInfo{
	Extends: {
		Label:     "Extends",
		Verb:      "extends",
		Authoring: AuthoredNewToOld,
		Emphasis:  1.0,
		Color:     "#7aa2f7",
	},
	BuildsOn: {
		Label:     "Builds on",
		Verb:      "builds on",
		Authoring: AuthoredNewToOld,
		Emphasis:  1.0,
		Color:     "#9ece6a",
	},
	ComparesWith: {
		Label:     "Compares with",
		Verb:      "compares with",
		Authoring: AuthoredNewToOld,
		Emphasis:  0.6,
		Color:     "#e0af68",
	},
	InspiredBy: {
		Label:     "Inspired by",
		Verb:      "is inspired by",
		Inverse:   Inspires,
		Authoring: AuthoredNewToOld,
		Emphasis:  0.8,
		Color:     "#bb9af7",
	},
	Inspires: {
		Label:     "Inspires",
		Verb:      "inspires",
		Inverse:   InspiredBy,
		InputOnly: true,
		Authoring: AuthoredOldToNew,
		Emphasis:  0.8,
		Color:     "#bb9af7",
	},
	Challenges: {
		Label:     "Challenges",
		Verb:      "challenges",
		Authoring: AuthoredNewToOld,
		Emphasis:  0.9,
		Color:     "#f7768e",
	},
	Applies: {
		Label:     "Applies",
		Verb:      "applies",
		Authoring: AuthoredNewToOld,
		Emphasis:  0.7,
		Color:     "#7dcfff",
	},
	Related: {
		Label:     "Related",
		Verb:      "is related to",
		Authoring: AuthoredNewToOld,
		Emphasis:  0.5,
		Color:     "#a9b1d6",
	},
}

// Info returns the table row for the type.
func (t RelationshipType) Info() (TypeInfo, bool) {
	info, ok := relationshipTypes[t]
	return info, ok
}

func (t RelationshipType) IsValid() bool {
	_, ok := relationshipTypes[t]
	return ok
}

func (t RelationshipType) String() string {
	return string(t)
}

func (t RelationshipType) Label() string {
	if info, ok := relationshipTypes[t]; ok {
		return info.Label
	}
	return string(t)
}

// Inverse returns the declared semantic inverse, if the type has one.
func (t RelationshipType) Inverse() (RelationshipType, bool) {
	info, ok := relationshipTypes[t]
	if !ok || info.Inverse == "" {
		return "", false
	}
	return info.Inverse, true
}

// Authoring returns the conventional authoring direction. Unknown types are
// treated as new-to-old.
func (t RelationshipType) Authoring() Authoring {
	if info, ok := relationshipTypes[t]; ok {
		return info.Authoring
	}
	return AuthoredNewToOld
}

// ParseRelationshipType accepts the stored form as well as spaced or dashed
// spellings ("builds on", "builds-on").
func ParseRelationshipType(raw string) (RelationshipType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	t := RelationshipType(normalized)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRelationshipType, raw)
	}
	return t, nil
}

const (
	MinStrength = 1
	MaxStrength = 10
)

type Relationship struct {
	ID          string           `yaml:"id"                    json:"id"`
	From        string           `yaml:"from_paper_id"         json:"from_paper_id"`
	To          string           `yaml:"to_paper_id"           json:"to_paper_id"`
	Type        RelationshipType `yaml:"relationship_type"     json:"relationship_type"`
	Strength    int              `yaml:"strength"              json:"strength"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
}

// Key identifies a relationship for the uniqueness rule.
type Key struct {
	From string
	To   string
	Type RelationshipType
}

func (r Relationship) Key() Key {
	return Key{From: r.From, To: r.To, Type: r.Type}
}

// Validate checks endpoint presence, type membership, and strength range.
func (r Relationship) Validate() error {
	if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
		return fmt.Errorf("relationship %q: both endpoints are required", r.ID)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("relationship %q: %w: %q", r.ID, ErrUnknownRelationshipType, r.Type)
	}
	if r.Strength < MinStrength || r.Strength > MaxStrength {
		return fmt.Errorf(
			"relationship %q: strength %d outside %d-%d",
			r.ID,
			r.Strength,
			MinStrength,
			MaxStrength,
		)
	}
	return nil
}

// Normalize returns the canonical storage form. Input-only types are flipped
// to their inverse with swapped endpoints, so "A inspires B" is stored as
// "B inspired_by A".
func Normalize(r Relationship) Relationship {
	info, ok := relationshipTypes[r.Type]
	if !ok || !info.InputOnly || info.Inverse == "" {
		return r
	}
	r.From, r.To = r.To, r.From
	r.Type = info.Inverse
	return r
}

// DisplayEdge returns the (source, target) pair used for layout. Edges read
// old to new, so relationships authored new-to-old are reversed.
func (r Relationship) DisplayEdge() (source, target string) {
	if r.Type.Authoring() == AuthoredOldToNew {
		return r.From, r.To
	}
	return r.To, r.From
}

// Other returns the endpoint opposite id.
func (r Relationship) Other(id string) string {
	if r.From == id {
		return r.To
	}
	return r.From
}

// Sentence renders "from <verb> to" using the supplied titles.
func (r Relationship) Sentence(fromTitle, toTitle string) string {
	verb := string(r.Type)
	if info, ok := relationshipTypes[r.Type]; ok {
		verb = info.Verb
	}
	return fmt.Sprintf("%s %s %s", fromTitle, verb, toTitle)
}
