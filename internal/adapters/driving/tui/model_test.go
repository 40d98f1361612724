package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// stubRetriever answers searches from a fixed list.
type stubRetriever struct {
	matches []domain.ChunkMatch
	err     error
	queries []string
}

func (s *stubRetriever) AddDocument(_ context.Context, _ string, _ map[string]any) (string, error) {
	return "", nil
}

func (s *stubRetriever) GetDocument(_ context.Context, _ string) (domain.Document, error) {
	return domain.Document{}, domain.ErrNotFound
}

func (s *stubRetriever) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (s *stubRetriever) FindRelevantChunks(_ context.Context, query string, _ int, _ float64) ([]domain.ChunkMatch, error) {
	s.queries = append(s.queries, query)
	return s.matches, s.err
}

func (s *stubRetriever) DeleteDocument(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func typeQuery(m Model, query string) Model {
	for _, r := range query {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(Model)
	}
	return m
}

func press(m Model, key tea.KeyType) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: key})
	return updated.(Model)
}

func TestModel_ShowsLoadingUntilSized(t *testing.T) {
	m := New(context.Background(), &stubRetriever{})
	assert.Equal(t, "Loading...", m.View())

	m = sized(m)
	assert.Contains(t, m.View(), "ragcore search")
}

func TestModel_EnterRunsQuery(t *testing.T) {
	chunk := domain.NewChunk("c1", "A matching chunk.", "d1", 0, nil)
	retriever := &stubRetriever{matches: []domain.ChunkMatch{{Chunk: chunk, Distance: 0.25}}}

	m := sized(New(context.Background(), retriever))
	m = typeQuery(m, "hello")
	m = press(m, tea.KeyEnter)

	require.Equal(t, []string{"hello"}, retriever.queries)
	assert.Contains(t, m.View(), "A matching chunk.")
	assert.Contains(t, m.View(), `1 results for "hello"`)
}

func TestModel_EmptyQueryDoesNothing(t *testing.T) {
	retriever := &stubRetriever{}
	m := sized(New(context.Background(), retriever))
	m = press(m, tea.KeyEnter)

	assert.Empty(t, retriever.queries)
}

func TestModel_SearchErrorShownInStatus(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("index offline")}
	m := sized(New(context.Background(), retriever))
	m = typeQuery(m, "q")
	m = press(m, tea.KeyEnter)

	assert.Contains(t, m.View(), "index offline")
}

func TestModel_CursorWrapsThroughResults(t *testing.T) {
	retriever := &stubRetriever{matches: []domain.ChunkMatch{
		{Chunk: domain.NewChunk("c1", "First chunk.", "d1", 0, nil), Distance: 0.1},
		{Chunk: domain.NewChunk("c2", "Second chunk.", "d1", 1, nil), Distance: 0.2},
	}}
	m := sized(New(context.Background(), retriever))
	m = typeQuery(m, "q")
	m = press(m, tea.KeyEnter)
	assert.Contains(t, m.View(), "First chunk.")

	m = press(m, tea.KeyDown)
	assert.Contains(t, m.View(), "Second chunk.")

	m = press(m, tea.KeyDown)
	assert.Contains(t, m.View(), "First chunk.")

	m = press(m, tea.KeyUp)
	assert.Contains(t, m.View(), "Second chunk.")
}

func TestModel_CtrlCQuits(t *testing.T) {
	m := sized(New(context.Background(), &stubRetriever{}))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
