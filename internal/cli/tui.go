package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/wordcloud/pkg/core/layout"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabStyle        = lipgloss.NewStyle().Foreground(colorGray)
	tableHeader     = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableBorder     = lipgloss.NewStyle().Foreground(colorDim)
	tableCellPad    = lipgloss.NewStyle().Padding(0, 1)
	tableCursorCell = tableCellPad.Bold(true).Foreground(colorGreen)
)

// inspectTab selects which word list the inspector shows.
type inspectTab int

const (
	tabPlaced inspectTab = iota
	tabDropped
)

// =============================================================================
// InspectModel - Interactive layout browser
// =============================================================================

// InspectModel is the bubbletea model for browsing a layout's placed and
// dropped words.
type InspectModel struct {
	Layout *layout.Result
	Source string
	Tab    inspectTab
	Cursor int
	Offset int
	Height int
}

// NewInspectModel creates a new inspector for res, loaded from source.
func NewInspectModel(res *layout.Result, source string) InspectModel {
	return InspectModel{Layout: res, Source: source, Height: 15}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) rowCount() int {
	if m.Tab == tabDropped {
		return len(m.Layout.Dropped)
	}
	return len(m.Layout.Placed)
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "left", "right", "h", "l":
			m.Tab = 1 - m.Tab
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-m.rowCount())
		case "end", "G":
			m.move(m.rowCount())
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta and keeps it inside the visible window.
func (m *InspectModel) move(delta int) {
	n := m.rowCount()
	m.Cursor = max(0, min(n-1, m.Cursor+delta))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

func (m InspectModel) View() string {
	var b strings.Builder

	st := m.Layout.Stats()
	b.WriteString(StyleTitle.Render(m.Source))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %dx%d · seed %d · %.1f%% coverage",
		m.Layout.Width, m.Layout.Height, m.Layout.Seed, st.Coverage*100)))
	b.WriteString("\n\n")

	placed := fmt.Sprintf("Placed (%d)", st.Placed)
	dropped := fmt.Sprintf("Dropped (%d)", st.Dropped)
	if m.Tab == tabPlaced {
		b.WriteString(tabActiveStyle.Render(placed) + "   " + tabStyle.Render(dropped))
	} else {
		b.WriteString(tabStyle.Render(placed) + "   " + tabActiveStyle.Render(dropped))
	}
	b.WriteString("\n")

	end := min(m.Offset+m.Height, m.rowCount())
	b.WriteString(wordTable(m.Layout, m.Tab, m.Offset, end, m.Cursor))
	b.WriteString("\n")

	if n := m.rowCount(); n > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  ", m.Cursor+1, n)))
	}
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⇥ switch list  q quit"))
	return b.String()
}

// wordTable renders rows [from, to) of the selected list. cursor marks the
// highlighted row; pass -1 for none.
func wordTable(res *layout.Result, tab inspectTab, from, to, cursor int) string {
	var headers []string
	rows := make([][]string, 0, to-from)

	if tab == tabDropped {
		headers = []string{"#", "Word", "Count", "Size", "Reason", "Detail"}
		for i := from; i < to; i++ {
			d := res.Dropped[i]
			rows = append(rows, []string{
				fmt.Sprint(d.Rank),
				d.Text,
				fmt.Sprint(d.Frequency),
				fmt.Sprintf("%.1f", d.Size),
				string(d.Reason),
				d.Detail,
			})
		}
	} else {
		headers = []string{"#", "Word", "Count", "Size", "Rot", "X", "Y", "Box"}
		for i := from; i < to; i++ {
			p := res.Placed[i]
			rows = append(rows, []string{
				fmt.Sprint(p.Rank),
				p.Text,
				fmt.Sprint(p.Frequency),
				fmt.Sprintf("%.1f", p.Size),
				fmt.Sprintf("%g°", p.Rotation),
				fmt.Sprint(p.X),
				fmt.Sprint(p.Y),
				fmt.Sprintf("%dx%d", p.Width, p.Height),
			})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeader.Padding(0, 1)
			}
			if from+row == cursor {
				return tableCursorCell
			}
			return tableCellPad
		})
	return t.Render()
}
