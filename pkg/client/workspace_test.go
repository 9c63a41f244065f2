package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	_, ok := s.Get(KeyProject)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyProject, "Irrigação"))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	v, ok := reopened.Get(KeyProject)
	assert.True(t, ok)
	assert.Equal(t, "Irrigação", v)
}

func TestSessionIDIsStableAcrossReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s1, err := OpenFileStore(path)
	require.NoError(t, err)
	w1, err := NewWorkspace(s1)
	require.NoError(t, err)
	require.NotEmpty(t, w1.SessionID())

	s2, err := OpenFileStore(path)
	require.NoError(t, err)
	w2, err := NewWorkspace(s2)
	require.NoError(t, err)

	assert.Equal(t, w1.SessionID(), w2.SessionID())
	assert.Equal(t, w1.Project(), w2.Project())
}

func TestWorkspaceGeneratesProjectOnFirstLoad(t *testing.T) {
	store := NewMemoryStore()
	w, err := NewWorkspace(store)
	require.NoError(t, err)

	assert.NotEmpty(t, w.Project())
	stored, _ := store.Get(KeyProject)
	assert.Equal(t, w.Project(), stored)
}

func TestSetProjectNotifiesInOrder(t *testing.T) {
	w, err := NewWorkspace(NewMemoryStore())
	require.NoError(t, err)

	var got []string
	w.Subscribe(func(p string) { got = append(got, "a:"+p) })
	unsubscribe := w.Subscribe(func(p string) { got = append(got, "b:"+p) })
	w.Subscribe(func(p string) { got = append(got, "c:"+p) })

	require.NoError(t, w.SetProject("  Sistema de Irrigação  "))
	assert.Equal(t, "Sistema de Irrigação", w.Project())
	assert.Equal(t, []string{"a:Sistema de Irrigação", "b:Sistema de Irrigação", "c:Sistema de Irrigação"}, got)

	got = nil
	unsubscribe()
	unsubscribe()
	require.NoError(t, w.SetProject("Foguete"))
	assert.Equal(t, []string{"a:Foguete", "c:Foguete"}, got)
}

func TestSetProjectRejectsBlank(t *testing.T) {
	w, err := NewWorkspace(NewMemoryStore())
	require.NoError(t, err)
	before := w.Project()

	assert.ErrorIs(t, w.SetProject("   "), ErrProjectRequired)
	assert.Equal(t, before, w.Project())
}

func TestNewProjectKeepsSession(t *testing.T) {
	w, err := NewWorkspace(NewMemoryStore())
	require.NoError(t, err)
	session, before := w.SessionID(), w.Project()

	label, err := w.NewProject()
	require.NoError(t, err)
	assert.NotEqual(t, before, label)
	assert.Equal(t, label, w.Project())
	assert.Equal(t, session, w.SessionID())
}
