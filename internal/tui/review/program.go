package review

import (
	tea "github.com/charmbracelet/bubbletea"

	reviewsvc "github.com/Paintersrp/citegraph/internal/review"
	"github.com/Paintersrp/citegraph/internal/state"
)

// standalone runs the review model as its own program, quitting when the
// model asks to exit.
type standalone struct {
	*Model
}

func (s standalone) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(ExitRequestedMsg); ok {
		return s, tea.Quit
	}
	_, cmd := s.Model.Update(msg)
	return s, cmd
}

// Run opens the review queue in the alternate screen until the user exits.
func Run(st *state.State, opts reviewsvc.QueueOptions) error {
	m, err := NewModel(st, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(standalone{Model: m}, tea.WithAltScreen()).Run()
	return err
}
