package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/minbump/pkg/resolve"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Exported so the picker and subcommands render with one palette.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

const iconArrow = "→"

// status is the leading marker of a one-line message.
type status struct {
	icon  string
	style lipgloss.Style
}

var (
	statusSuccess = status{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = status{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = status{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	statusInfo    = status{"›", lipgloss.NewStyle().Foreground(colorGray)}
	spinnerStyle  = lipgloss.NewStyle().Foreground(colorCyan)
)

func (s status) line(msg string) string {
	return s.style.Render(s.icon) + " " + msg
}

func printSuccess(format string, args ...any) {
	fmt.Println(statusSuccess.line(fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Println(statusError.line(fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Println(statusWarning.line(StyleWarning.Render(fmt.Sprintf(format, args...))))
}

func printInfo(format string, args ...any) {
	fmt.Println(statusInfo.line(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a file written by a command.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(lipgloss.NewStyle().Foreground(colorGray).Width(12).Render(key) + " " + StyleValue.Render(value))
}

// Columns of the update results table.
const (
	colDependent = iota
	colVersion
	colEffective
)

// writeResultsTable renders update results with one row per dependent.
// Blocked dependents show their outcome message in the version column.
func writeResultsTable(w io.Writer, dep string, results []resolve.Result) {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{r.Name, r.Outcome.String(), r.Outcome.Effective}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		BorderColumn(false).
		Headers("Dependent", "Update to", dep).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 {
				return base.Foreground(colorGray).Bold(true)
			}
			switch col {
			case colDependent:
				return base.Foreground(colorCyan)
			case colVersion:
				if row < len(results) && results[row].Outcome.NoFavourable {
					return base.Foreground(colorYellow)
				}
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorDim)
		})
	fmt.Fprintln(w, t.Render())
}
