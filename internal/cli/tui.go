package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// ChainListModel is the bubbletea model for interactive chain selection.
type ChainListModel struct {
	Chains   []string
	Cursor   int
	Selected string
}

// NewChainListModel creates a chain list model over the supported chains.
func NewChainListModel() ChainListModel {
	return ChainListModel{Chains: mapdata.SupportedChains()}
}

func (m ChainListModel) Init() tea.Cmd {
	return nil
}

func (m ChainListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Chains)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Chains[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ChainListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Chain"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, chain := range m.Chains {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-8s %s", cursor, chain, listDimStyle.Render(mapdata.ChainLabel(chain)))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Chains))))

	return b.String()
}

// pickChain runs the interactive chain picker and returns the selected
// chain identifier. Requires stdin to be a terminal; pipelines must pass
// --chain.
func pickChain() (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", errors.New(errors.ErrCodeInvalidInput,
			"chain is required when not running interactively (use --chain)")
	}

	p := tea.NewProgram(NewChainListModel())
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	fm, ok := finalModel.(ChainListModel)
	if !ok || fm.Selected == "" {
		return "", fmt.Errorf("no chain selected")
	}
	return fm.Selected, nil
}
