package cli

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(m RootPickerModel, msgs ...tea.Msg) RootPickerModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(RootPickerModel)
	}
	return m
}

func TestRootPickerStartsWithAllSelected(t *testing.T) {
	roots := []string{"a@1.0.0", "@scope/b@2.0.0", "c@3.0.0"}
	m := NewRootPickerModel(roots)
	if got := m.Selected(); !slices.Equal(got, roots) {
		t.Errorf("Selected() = %v, want %v", got, roots)
	}
}

func TestRootPickerToggle(t *testing.T) {
	m := NewRootPickerModel([]string{"a@1.0.0", "b@1.0.0", "c@1.0.0"})

	m = press(m, key(tea.KeyDown), runes("x"))
	if got := m.Selected(); !slices.Equal(got, []string{"a@1.0.0", "c@1.0.0"}) {
		t.Errorf("after toggling b: %v", got)
	}

	m = press(m, runes("a"))
	if got := m.Selected(); !slices.Equal(got, []string{"a@1.0.0", "b@1.0.0", "c@1.0.0"}) {
		t.Errorf("'a' with a partial selection should select all: %v", got)
	}

	m = press(m, runes("a"))
	if got := m.Selected(); len(got) != 0 {
		t.Errorf("'a' with everything selected should clear: %v", got)
	}

	m = press(m, key(tea.KeyEnter))
	if !m.Done || m.Aborted {
		t.Errorf("enter: Done=%v Aborted=%v", m.Done, m.Aborted)
	}
}

func TestRootPickerCursorBounds(t *testing.T) {
	m := NewRootPickerModel([]string{"a@1.0.0", "b@1.0.0"})

	m = press(m, key(tea.KeyUp))
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the list: %d", m.Cursor)
	}
	m = press(m, key(tea.KeyDown), key(tea.KeyDown), key(tea.KeyDown))
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor)
	}
}

func TestRootPickerScrolls(t *testing.T) {
	roots := make([]string, 20)
	for i := range roots {
		roots[i] = "pkg@1.0.0"
	}
	m := NewRootPickerModel(roots)
	m.Height = 5

	for range 7 {
		m = press(m, key(tea.KeyDown))
	}
	if m.Cursor != 7 || m.Offset != 3 {
		t.Errorf("Cursor=%d Offset=%d, want 7 and 3", m.Cursor, m.Offset)
	}
}

func TestRootPickerAbort(t *testing.T) {
	m := press(NewRootPickerModel([]string{"a@1.0.0"}), runes("q"))
	if !m.Aborted {
		t.Error("q should abort the picker")
	}
}

func TestRootPickerView(t *testing.T) {
	m := NewRootPickerModel([]string{"@babel/core@7.1.0", "lib@1.0.0"})
	m = press(m, key(tea.KeyDown), runes("x"))

	view := m.View()
	for _, want := range []string{"Select Dependents", "@babel/core", "7.1.0", "[x]", "[ ]", "1 selected of 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}
