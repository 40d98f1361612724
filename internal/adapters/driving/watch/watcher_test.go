package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// fakeRetriever records ingestion and deletion calls.
type fakeRetriever struct {
	mu      sync.Mutex
	nextID  int
	added   map[string]string // doc id -> content
	deleted []string
}

func newFakeRetriever() *fakeRetriever {
	return &fakeRetriever{added: make(map[string]string)}
}

func (f *fakeRetriever) AddDocument(_ context.Context, content string, _ map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.added[id] = content
	return id, nil
}

func (f *fakeRetriever) GetDocument(_ context.Context, id string) (domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.added[id]
	if !ok {
		return domain.Document{}, domain.ErrNotFound
	}
	return domain.NewDocument(id, content, nil), nil
}

func (f *fakeRetriever) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (f *fakeRetriever) FindRelevantChunks(_ context.Context, _ string, _ int, _ float64) ([]domain.ChunkMatch, error) {
	return nil, nil
}

func (f *fakeRetriever) DeleteDocument(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.added[id]; !ok {
		return false, nil
	}
	delete(f.added, id)
	f.deleted = append(f.deleted, id)
	return true, nil
}

func TestNew_RejectsMissingDirectory(t *testing.T) {
	_, err := New(newFakeRetriever(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestNew_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := New(newFakeRetriever(), path)
	assert.Error(t, err)
}

func TestHandleEvent_CreateIngestsFile(t *testing.T) {
	dir := t.TempDir()
	retriever := newFakeRetriever()
	w, err := New(retriever, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("Some content."), 0644))

	err = w.handleEvent(context.Background(), fsnotify.Event{Name: path, Op: fsnotify.Create})
	require.NoError(t, err)

	id, ok := w.tracked(path)
	require.True(t, ok)
	assert.Equal(t, "Some content.", retriever.added[id])
}

func TestHandleEvent_WriteReplacesDocument(t *testing.T) {
	dir := t.TempDir()
	retriever := newFakeRetriever()
	w, err := New(retriever, dir)
	require.NoError(t, err)
	ctx := context.Background()

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("Version one."), 0644))
	require.NoError(t, w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Create}))
	firstID, _ := w.tracked(path)

	require.NoError(t, os.WriteFile(path, []byte("Version two."), 0644))
	require.NoError(t, w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Write}))

	secondID, ok := w.tracked(path)
	require.True(t, ok)
	assert.NotEqual(t, firstID, secondID)
	assert.Contains(t, retriever.deleted, firstID)
	assert.Equal(t, "Version two.", retriever.added[secondID])
}

func TestHandleEvent_RemoveDeletesDocument(t *testing.T) {
	dir := t.TempDir()
	retriever := newFakeRetriever()
	w, err := New(retriever, dir)
	require.NoError(t, err)
	ctx := context.Background()

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("Short lived."), 0644))
	require.NoError(t, w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Create}))
	id, _ := w.tracked(path)

	require.NoError(t, os.Remove(path))
	require.NoError(t, w.handleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Remove}))

	_, ok := w.tracked(path)
	assert.False(t, ok)
	assert.Contains(t, retriever.deleted, id)
}

func TestHandleEvent_SkipsHiddenAndDirectories(t *testing.T) {
	dir := t.TempDir()
	retriever := newFakeRetriever()
	w, err := New(retriever, dir)
	require.NoError(t, err)
	ctx := context.Background()

	hidden := filepath.Join(dir, ".secret.txt")
	require.NoError(t, os.WriteFile(hidden, []byte("hidden"), 0644))
	require.NoError(t, w.handleEvent(ctx, fsnotify.Event{Name: hidden, Op: fsnotify.Create}))

	sub := filepath.Join(dir, "subdir")
	require.NoError(t, os.Mkdir(sub, 0755))
	require.NoError(t, w.handleEvent(ctx, fsnotify.Event{Name: sub, Op: fsnotify.Create}))

	assert.Empty(t, retriever.added)
}

func TestHandleEvent_ChmodIgnored(t *testing.T) {
	dir := t.TempDir()
	retriever := newFakeRetriever()
	w, err := New(retriever, dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0644))

	require.NoError(t, w.handleEvent(context.Background(), fsnotify.Event{Name: path, Op: fsnotify.Chmod}))
	assert.Empty(t, retriever.added)
}

func TestIngestExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Doc a."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("Doc b."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("nope"), 0644))

	retriever := newFakeRetriever()
	w, err := New(retriever, dir)
	require.NoError(t, err)

	require.NoError(t, w.ingestExisting(context.Background()))
	assert.Len(t, retriever.added, 2)
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"dir/.hidden.txt", true},
		{".git/config", true},
		{"visible.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"file.hidden", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, isHidden(tt.path), tt.path)
	}
}
