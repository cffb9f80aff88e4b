package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/s2quake/vtree/internal/vpath"
)

// nameField is a labeled input that accepts one path segment.
type nameField struct {
	label string
	input textinput.Model
	err   error
}

func newNameField(label string) nameField {
	ti := textinput.New()
	ti.Placeholder = "name"
	ti.CharLimit = 255
	ti.Width = 40
	ti.Focus()

	return nameField{label: label, input: ti}
}

func (f nameField) Update(msg tea.Msg) (nameField, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.err = nil
	if v := f.input.Value(); v != "" {
		f.err = vpath.ValidateName(v)
	}
	return f, cmd
}

func (f nameField) View() string {
	var b strings.Builder
	b.WriteString(InputLabelStyle.Render(f.label))
	b.WriteString(f.input.View())
	if f.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(f.err.Error()))
	}
	return b.String()
}

func (f nameField) Value() string {
	return f.input.Value()
}

// Validate reports why the current value is not a usable name.
func (f *nameField) Validate() error {
	f.err = vpath.ValidateName(f.input.Value())
	return f.err
}
