package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	pkgio "github.com/matzehuels/photonlayout/pkg/io"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// topChoice describes a candidate top cell.
type topChoice struct {
	Name      string
	Instances int
	Polygons  int
	Ports     int
}

// topChoices lists the unplaced cells of doc.
func topChoices(doc *pkgio.Document) []topChoice {
	byName := make(map[string]pkgio.CellDoc, len(doc.Cells))
	for _, c := range doc.Cells {
		byName[c.Name] = c
	}
	var out []topChoice
	for _, name := range doc.TopCells() {
		c := byName[name]
		out = append(out, topChoice{
			Name:      name,
			Instances: len(c.Instances),
			Polygons:  len(c.Polygons),
			Ports:     len(c.Ports),
		})
	}
	return out
}

// TopListModel is the bubbletea model for picking the top cell when a
// document leaves it ambiguous.
type TopListModel struct {
	Choices  []topChoice
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

func NewTopListModel(choices []topChoice) TopListModel {
	return TopListModel{Choices: choices, Height: 15}
}

func (m TopListModel) Init() tea.Cmd {
	return nil
}

func (m TopListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Choices)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Choices[m.Cursor].Name
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m TopListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Top Cell"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Choices))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		c := m.Choices[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, c.Name,
			fmt.Sprint(c.Instances), fmt.Sprint(c.Polygons), fmt.Sprint(c.Ports)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Cell", "Instances", "Polygons", "Ports").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Choices))))
	return b.String()
}

// pickTop asks the user to choose among choices. It returns "" when the
// user quits without choosing.
func pickTop(choices []topChoice) (string, error) {
	final, err := tea.NewProgram(NewTopListModel(choices)).Run()
	if err != nil {
		return "", fmt.Errorf("top cell picker: %w", err)
	}
	return final.(TopListModel).Selected, nil
}
