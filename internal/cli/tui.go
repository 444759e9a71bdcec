package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/minbump/pkg/lockfile"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RootPickerModel - Interactive dependent selection
// =============================================================================

// RootPickerModel is the bubbletea model for choosing which dependents
// ("name@version") to resolve.
type RootPickerModel struct {
	Roots   []string
	Chosen  map[int]bool
	Cursor  int
	Height  int
	Offset  int
	Done    bool
	Aborted bool
}

// NewRootPickerModel creates a picker with every root selected.
func NewRootPickerModel(roots []string) RootPickerModel {
	chosen := make(map[int]bool, len(roots))
	for i := range roots {
		chosen[i] = true
	}
	return RootPickerModel{
		Roots:  roots,
		Chosen: chosen,
		Height: 15,
	}
}

func (m RootPickerModel) Init() tea.Cmd {
	return nil
}

func (m RootPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Roots)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "space", "x":
			if len(m.Roots) > 0 {
				m.Chosen[m.Cursor] = !m.Chosen[m.Cursor]
			}
		case "a":
			all := len(m.Selected()) == len(m.Roots)
			for i := range m.Roots {
				m.Chosen[i] = !all
			}
		case "enter":
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// Selected returns the chosen roots in list order.
func (m RootPickerModel) Selected() []string {
	var out []string
	for i, r := range m.Roots {
		if m.Chosen[i] {
			out = append(out, r)
		}
	}
	return out
}

func (m RootPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Dependents"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ resolve  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Roots))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Chosen[i] {
			mark = "[x]"
		}
		name, ver, err := lockfile.ParseRef(m.Roots[i])
		if err != nil {
			name, ver = m.Roots[i], "?"
		}
		rows = append(rows, []string{cursor, mark, name, ver})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Package", "Version").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			base := lipgloss.NewStyle()
			if col == 3 {
				base = base.Foreground(colorGray)
			}
			switch {
			case idx == m.Cursor && m.Chosen[idx]:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Bold(true)
			case m.Chosen[idx]:
				return base.Foreground(colorGreen)
			}
			return base.Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d selected of %d]", len(m.Selected()), len(m.Roots))))

	return b.String()
}

// pickRoots runs the picker and returns the chosen roots.
func pickRoots(roots []string) ([]string, error) {
	final, err := tea.NewProgram(NewRootPickerModel(roots)).Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	m, ok := final.(RootPickerModel)
	if !ok || m.Aborted {
		return nil, errAborted
	}
	return m.Selected(), nil
}
