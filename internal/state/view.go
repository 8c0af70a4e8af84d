package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/citegraph/internal/constants"
	"github.com/Paintersrp/citegraph/internal/layout"
)

// Panel names a collapsible pane of the explorer.
type Panel string

const (
	PanelDetails     Panel = "details"
	PanelConnections Panel = "connections"
	PanelBridges     Panel = "bridges"
	PanelNotes       Panel = "notes"
)

var Panels = []Panel{PanelDetails, PanelConnections, PanelBridges, PanelNotes}

// ViewState is the per-library UI state. It is owned by the interface layer
// and never read by the graph code, which only sees the hidden set through
// graph.BuildOptions.
type ViewState struct {
	Selected  string           `yaml:"selected,omitempty"`
	Panels    []Panel          `yaml:"panels,omitempty"`
	Hidden    []string         `yaml:"hidden,omitempty"`
	Direction layout.Direction `yaml:"direction,omitempty"`
}

func ViewStatePath(libraryDir string) string {
	return filepath.Join(libraryDir, constants.StateDir, constants.ViewFile)
}

// LoadViewState reads the view state of a library. A missing file yields the
// default view with the details and connections panels open.
func LoadViewState(libraryDir string) (*ViewState, error) {
	data, err := os.ReadFile(ViewStatePath(libraryDir))
	if errors.Is(err, fs.ErrNotExist) {
		return &ViewState{Panels: []Panel{PanelDetails, PanelConnections}}, nil
	}
	if err != nil {
		return nil, err
	}

	view := &ViewState{}
	if err := yaml.Unmarshal(data, view); err != nil {
		return nil, fmt.Errorf("parse view state: %w", err)
	}
	view.normalize()
	return view, nil
}

func (v *ViewState) Save(libraryDir string) error {
	v.normalize()
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	path := ViewStatePath(libraryDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (v *ViewState) normalize() {
	sort.Strings(v.Hidden)
	v.Hidden = slices.Compact(v.Hidden)

	panels := make([]Panel, 0, len(v.Panels))
	for _, p := range Panels {
		if slices.Contains(v.Panels, p) {
			panels = append(panels, p)
		}
	}
	v.Panels = panels
}

func (v *ViewState) HiddenSet() map[string]bool {
	set := make(map[string]bool, len(v.Hidden))
	for _, id := range v.Hidden {
		set[id] = true
	}
	return set
}

func (v *ViewState) IsHidden(id string) bool {
	return slices.Contains(v.Hidden, id)
}

// Hide adds id to the hidden set and reports whether it changed.
func (v *ViewState) Hide(id string) bool {
	if id == "" || v.IsHidden(id) {
		return false
	}
	v.Hidden = append(v.Hidden, id)
	sort.Strings(v.Hidden)
	return true
}

// Unhide removes id from the hidden set and reports whether it changed.
func (v *ViewState) Unhide(id string) bool {
	i := slices.Index(v.Hidden, id)
	if i < 0 {
		return false
	}
	v.Hidden = slices.Delete(v.Hidden, i, i+1)
	return true
}

func (v *ViewState) PanelOpen(p Panel) bool {
	return slices.Contains(v.Panels, p)
}

// TogglePanel opens or closes p and returns its new state.
func (v *ViewState) TogglePanel(p Panel) bool {
	if i := slices.Index(v.Panels, p); i >= 0 {
		v.Panels = slices.Delete(v.Panels, i, i+1)
		return false
	}
	v.Panels = append(v.Panels, p)
	v.normalize()
	return true
}

// Prune drops the selection and hidden ids that are no longer papers.
func (v *ViewState) Prune(exists func(string) bool) {
	if v.Selected != "" && !exists(v.Selected) {
		v.Selected = ""
	}
	kept := v.Hidden[:0]
	for _, id := range v.Hidden {
		if exists(id) {
			kept = append(kept, id)
		}
	}
	v.Hidden = kept
}
