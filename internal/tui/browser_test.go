package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s2quake/vtree/internal/backend/memory"
	"github.com/s2quake/vtree/internal/storage"
)

// newTestStore builds /docs/a.txt and /b.txt in memory.
func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(memory.New(memory.Config{}))
	require.NoError(t, err)
	docs, err := s.Root().CreateFolder("docs")
	require.NoError(t, err)
	_, err = docs.CreateFile("a.txt", strings.NewReader("alpha"), 5)
	require.NoError(t, err)
	_, err = s.Root().CreateFile("b.txt", strings.NewReader("hi"), 2)
	require.NoError(t, err)
	return s
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// press feeds msgs to b and delivers the result of any quick command back
// to it, the way the bubbletea runtime would. Slow commands such as cursor
// blinks are dropped.
func press(t *testing.T, b Browser, msgs ...tea.Msg) Browser {
	t.Helper()
	for _, msg := range msgs {
		m, cmd := b.Update(msg)
		b = m.(Browser)
		if cmd == nil {
			continue
		}
		if reply := runQuick(cmd); reply != nil {
			if _, quit := reply.(tea.QuitMsg); !quit {
				m, _ = b.Update(reply)
				b = m.(Browser)
			}
		}
	}
	return b
}

func runQuick(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

func TestBrowser_Navigation(t *testing.T) {
	b := NewBrowser(newTestStore(t))
	assert.Equal(t, "/", b.Cwd())
	assert.Equal(t, "docs", b.Cursor())

	b = press(t, b, keyMsg(tea.KeyDown))
	assert.Equal(t, "b.txt", b.Cursor())
	b = press(t, b, keyMsg(tea.KeyDown))
	assert.Equal(t, "b.txt", b.Cursor(), "cursor stops at the last entry")

	b = press(t, b, keyMsg(tea.KeyUp), keyMsg(tea.KeyEnter))
	assert.Equal(t, "/docs", b.Cwd())
	assert.Equal(t, "a.txt", b.Cursor())

	b = press(t, b, keyMsg(tea.KeyEnter))
	assert.Equal(t, "/docs", b.Cwd(), "enter on a file does nothing")

	b = press(t, b, keyMsg(tea.KeyBackspace))
	assert.Equal(t, "/", b.Cwd())
	assert.Equal(t, "docs", b.Cursor(), "cursor returns to the folder we left")

	b = press(t, b, keyMsg(tea.KeyBackspace))
	assert.Equal(t, "/", b.Cwd(), "root has no parent")
}

func TestBrowser_Hash(t *testing.T) {
	b := NewBrowser(newTestStore(t))
	b = press(t, b, runes("j"), runes("x"))

	assert.NoError(t, b.Err())
	assert.Contains(t, b.View(), "8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4")
}

func TestBrowser_NewFolder(t *testing.T) {
	s := newTestStore(t)
	b := NewBrowser(s)

	b = press(t, b, runes("n"))
	assert.Equal(t, modeNaming, b.mode)
	assert.Contains(t, b.View(), "New folder in /:")

	b = press(t, b, runes("new"), keyMsg(tea.KeyEnter))
	assert.Equal(t, modeBrowse, b.mode)
	assert.Equal(t, "new", b.Cursor())
	_, err := s.ResolveFolder("/new")
	assert.NoError(t, err)
}

func TestBrowser_NewFolderRejectsBadNames(t *testing.T) {
	s := newTestStore(t)
	b := NewBrowser(s)

	b = press(t, b, runes("n"), runes("a/b"), keyMsg(tea.KeyEnter))
	assert.Equal(t, modeNaming, b.mode, "stays open on an invalid name")

	b = press(t, b, keyMsg(tea.KeyEsc))
	assert.Equal(t, modeBrowse, b.mode)
	assert.Equal(t, []string{"/", "/docs"}, s.FolderPaths())
}

func TestBrowser_NewFolderDuplicate(t *testing.T) {
	b := NewBrowser(newTestStore(t))
	b = press(t, b, runes("n"), runes("docs"), keyMsg(tea.KeyEnter))

	assert.Equal(t, modeBrowse, b.mode)
	assert.Error(t, b.Err())
	assert.Contains(t, b.View(), SymbolCross)
}

func TestBrowser_Delete(t *testing.T) {
	s := newTestStore(t)
	b := NewBrowser(s)

	b = press(t, b, runes("j"), runes("d"))
	assert.Contains(t, b.View(), "Delete b.txt?")
	b = press(t, b, runes("n"))
	assert.Contains(t, s.FilePaths(), "/b.txt")

	b = press(t, b, runes("d"), runes("y"))
	assert.NotContains(t, s.FilePaths(), "/b.txt")
	assert.Equal(t, "docs", b.Cursor(), "cursor clamps after the last row goes")
}

func TestBrowser_CwdDeletedElsewhere(t *testing.T) {
	s := newTestStore(t)
	b := NewBrowser(s)
	b = press(t, b, keyMsg(tea.KeyEnter))
	require.Equal(t, "/docs", b.Cwd())

	docs, err := s.ResolveFolder("/docs")
	require.NoError(t, err)
	require.NoError(t, docs.Delete())

	b = press(t, b, runes("r"))
	assert.Equal(t, "/", b.Cwd())
}

func TestBrowser_EmptyFolderAndHelp(t *testing.T) {
	s, err := storage.New(memory.New(memory.Config{}))
	require.NoError(t, err)
	b := NewBrowser(s)

	assert.Contains(t, b.View(), "(empty)")
	assert.Equal(t, "", b.Cursor())

	b = press(t, b, runes("?"))
	assert.Contains(t, b.View(), "new folder")
}

func TestBrowser_Quit(t *testing.T) {
	b := NewBrowser(newTestStore(t))
	_, cmd := b.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
