package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/s2quake/vtree/internal/storage"
	"github.com/s2quake/vtree/pkg/vtree"
)

type browserMode int

const (
	modeBrowse browserMode = iota
	modeNaming
	modeConfirmDelete
)

// entry is one row of the listing.
type entry struct {
	name   string
	isDir  bool
	size   int64
	folder storage.Folder
	file   storage.File
}

func (e entry) handle() vtree.Handle {
	if e.isDir {
		return e.folder.Handle()
	}
	return e.file.Handle()
}

// hashMsg carries the result of an on-demand hash.
type hashMsg struct {
	handle vtree.Handle
	sum    string
	err    error
}

// Browser is a bubbletea model that walks a storage one folder at a time.
type Browser struct {
	store   *storage.Storage
	cwd     storage.Folder
	entries []entry
	cursor  int
	hashes  map[vtree.Handle]string

	mode     browserMode
	name     nameField
	keys     KeyMap
	showHelp bool
	status   string
	err      error
	height   int
}

// NewBrowser opens a browser at the root folder of s.
func NewBrowser(s *storage.Storage) Browser {
	b := Browser{
		store:  s,
		cwd:    s.Root(),
		hashes: make(map[vtree.Handle]string),
		keys:   DefaultKeyMap(),
	}
	b.reload()
	return b
}

// RunBrowser runs the browser on the alternate screen until the user quits.
func RunBrowser(s *storage.Storage) error {
	_, err := tea.NewProgram(NewBrowser(s), tea.WithAltScreen()).Run()
	return err
}

// Cwd returns the path of the folder being listed.
func (b Browser) Cwd() string { return b.cwd.Path() }

// Cursor returns the name of the selected entry, or "" for an empty folder.
func (b Browser) Cursor() string {
	if e, ok := b.selected(); ok {
		return e.name
	}
	return ""
}

// Err returns the error of the last failed action.
func (b Browser) Err() error { return b.err }

func (b Browser) selected() (entry, bool) {
	if b.cursor < 0 || b.cursor >= len(b.entries) {
		return entry{}, false
	}
	return b.entries[b.cursor], true
}

// reload lists cwd again. A folder deleted behind the browser's back sends
// it to the root.
func (b *Browser) reload() {
	if !b.cwd.Exists() {
		b.cwd = b.store.Root()
	}

	b.entries = nil
	folders, err := b.cwd.Folders()
	if err != nil {
		b.err = err
		return
	}
	for _, f := range folders {
		b.entries = append(b.entries, entry{name: f.Name(), isDir: true, folder: f})
	}
	files, err := b.cwd.Files()
	if err != nil {
		b.err = err
		return
	}
	for _, f := range files {
		b.entries = append(b.entries, entry{name: f.Name(), size: f.Size(), file: f})
	}

	if b.cursor >= len(b.entries) {
		b.cursor = len(b.entries) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// Init implements tea.Model.
func (b Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.height = msg.Height
		return b, nil

	case hashMsg:
		if msg.err != nil {
			b.err = msg.err
			return b, nil
		}
		b.hashes[msg.handle] = msg.sum
		return b, nil

	case tea.KeyMsg:
		switch b.mode {
		case modeNaming:
			return b.updateNaming(msg)
		case modeConfirmDelete:
			return b.updateConfirm(msg)
		}
		return b.updateBrowse(msg)
	}
	return b, nil
}

func (b Browser) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit

	case key.Matches(msg, b.keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}

	case key.Matches(msg, b.keys.Down):
		if b.cursor < len(b.entries)-1 {
			b.cursor++
		}

	case key.Matches(msg, b.keys.Open):
		if e, ok := b.selected(); ok && e.isDir {
			b.cwd = e.folder
			b.cursor = 0
			b.status, b.err = "", nil
			b.reload()
		}

	case key.Matches(msg, b.keys.Back):
		if parent, ok := b.cwd.Parent(); ok {
			from := b.cwd.Name()
			b.cwd = parent
			b.cursor = 0
			b.reload()
			for i, e := range b.entries {
				if e.isDir && e.name == from {
					b.cursor = i
					break
				}
			}
		}

	case key.Matches(msg, b.keys.Hash):
		if e, ok := b.selected(); ok && !e.isDir {
			return b, hashCmd(e.file)
		}

	case key.Matches(msg, b.keys.NewFolder):
		b.mode = modeNaming
		b.name = newNameField("New folder in " + b.cwd.Path() + ":")
		b.err = nil

	case key.Matches(msg, b.keys.Delete):
		if _, ok := b.selected(); ok {
			b.mode = modeConfirmDelete
		}

	case key.Matches(msg, b.keys.Refresh):
		b.reload()

	case key.Matches(msg, b.keys.Help):
		b.showHelp = !b.showHelp
	}
	return b, nil
}

func (b Browser) updateNaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		b.mode = modeBrowse
		return b, nil
	case tea.KeyEnter:
		if err := b.name.Validate(); err != nil {
			return b, nil
		}
		name := b.name.Value()
		b.mode = modeBrowse
		if _, err := b.cwd.CreateFolder(name); err != nil {
			b.err = err
			return b, nil
		}
		b.status = "created " + name
		b.reload()
		for i, e := range b.entries {
			if e.isDir && e.name == name {
				b.cursor = i
			}
		}
		return b, nil
	}

	var cmd tea.Cmd
	b.name, cmd = b.name.Update(msg)
	return b, cmd
}

func (b Browser) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b.mode = modeBrowse
	if msg.String() != "y" {
		b.status = "delete cancelled"
		return b, nil
	}
	e, ok := b.selected()
	if !ok {
		return b, nil
	}

	var err error
	if e.isDir {
		err = e.folder.Delete()
	} else {
		err = e.file.Delete()
	}
	if err != nil {
		b.err = err
		return b, nil
	}
	delete(b.hashes, e.handle())
	b.status = "deleted " + e.name
	b.reload()
	return b, nil
}

func hashCmd(f storage.File) tea.Cmd {
	return func() tea.Msg {
		sum, err := f.Hash()
		return hashMsg{handle: f.Handle(), sum: sum, err: err}
	}
}

// View implements tea.Model.
func (b Browser) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("%s  %s", b.store.Backend().Kind(), b.cwd.Path())))
	s.WriteString("\n")

	if len(b.entries) == 0 {
		s.WriteString(HelpStyle.Render("(empty)"))
		s.WriteString("\n")
	}
	for i, e := range b.entries {
		line := b.renderEntry(e)
		if i == b.cursor {
			line = SelectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	switch b.mode {
	case modeNaming:
		s.WriteString("\n")
		s.WriteString(b.name.View())
		s.WriteString("\n")
	case modeConfirmDelete:
		if e, ok := b.selected(); ok {
			s.WriteString("\n")
			s.WriteString(WarningStyle.Render(fmt.Sprintf("Delete %s? [y/N]", e.name)))
			s.WriteString("\n")
		}
	}

	if b.err != nil {
		s.WriteString(ErrorStyle.Render(SymbolCross + " " + b.err.Error()))
		s.WriteString("\n")
	} else if b.status != "" {
		s.WriteString(SuccessStyle.Render(SymbolCheck + " " + b.status))
		s.WriteString("\n")
	}

	help := b.keys.HelpText()
	if b.showHelp {
		help = b.keys.FullHelpText()
	}
	s.WriteString(HelpStyle.Render(help))
	return s.String()
}

func (b Browser) renderEntry(e entry) string {
	if e.isDir {
		return FolderStyle.Render(SymbolFolder+" "+e.name) + "/"
	}
	line := "  " + FileStyle.Render(e.name) + "  " + SizeStyle.Render(FormatSize(e.size))
	if sum, ok := b.hashes[e.handle()]; ok {
		line += "  " + HashStyle.Render(sum)
	}
	return line
}
