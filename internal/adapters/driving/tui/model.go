// Package tui provides an interactive terminal interface for querying
// the engine, following the Elm architecture via Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	resultStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	distanceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model is the Bubble Tea model for interactive search.
type Model struct {
	retriever driving.Retriever
	ctx       context.Context

	input    textinput.Model
	viewport viewport.Model
	matches  []domain.ChunkMatch
	cursor   int
	status   string
	isError  bool
	ready    bool
	topK     int
}

// New creates a search model over the given retriever.
func New(ctx context.Context, retriever driving.Retriever) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a query and press Enter"
	ti.Focus()
	vp := viewport.New(0, 0)
	return Model{
		retriever: retriever,
		ctx:       ctx,
		input:     ti,
		viewport:  vp,
		status:    "Ready.",
		topK:      domain.DefaultTopK,
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultStyle.GetFrameSize()
		_, qh := queryStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, input box, spacer
		vh := msg.Height - reserved - rh
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderMatch())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			return m.runQuery(), nil
		case "down":
			if len(m.matches) > 0 {
				m.cursor = (m.cursor + 1) % len(m.matches)
				m.viewport.SetContent(m.renderMatch())
				return m, nil
			}
		case "up":
			if len(m.matches) > 0 {
				m.cursor = (m.cursor - 1 + len(m.matches)) % len(m.matches)
				m.viewport.SetContent(m.renderMatch())
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runQuery() Model {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m
	}

	matches, err := m.retriever.FindRelevantChunks(m.ctx, query, m.topK, domain.NoDistanceLimit)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.isError = true
		m.matches = nil
	} else if len(matches) == 0 {
		m.status = fmt.Sprintf("No results for %q", query)
		m.isError = false
		m.matches = nil
	} else {
		m.status = fmt.Sprintf("%d results for %q", len(matches), query)
		m.isError = false
		m.matches = matches
		m.cursor = 0
	}
	m.viewport.SetContent(m.renderMatch())
	return m
}

// View renders the layout: header, result box, query box, status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("ragcore search")
	results := resultStyle.Render(m.viewport.View())
	input := queryStyle.Render(m.input.View())
	status := m.status
	if m.isError {
		status = errorStyle.Render(status)
	} else {
		status = statusStyle.Render(status)
	}
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderMatch() string {
	if len(m.matches) == 0 {
		return "No results yet."
	}
	match := m.matches[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s",
		m.cursor+1, len(m.matches),
		distanceStyle.Render(fmt.Sprintf("distance=%.4f", match.Distance)))
	doc := distanceStyle.Render("document " + match.Chunk.DocumentID())
	return title + "\n" + doc + "\n\n" + match.Chunk.Text()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
