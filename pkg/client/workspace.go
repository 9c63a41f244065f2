package client

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrProjectRequired = errors.New("informe o nome do projeto")

// Workspace owns the current project name and the session id. The session
// id is generated once per store and never changes afterwards.
type Workspace struct {
	mu      sync.Mutex
	store   Store
	project string
	session string

	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn func(project string)
}

func NewWorkspace(store Store) (*Workspace, error) {
	w := &Workspace{store: store}

	session, ok := store.Get(KeySession)
	if !ok || strings.TrimSpace(session) == "" {
		session = uuid.NewString()
		if err := store.Set(KeySession, session); err != nil {
			return nil, err
		}
	}
	w.session = session

	project, ok := store.Get(KeyProject)
	if !ok || strings.TrimSpace(project) == "" {
		project = newProjectLabel()
		if err := store.Set(KeyProject, project); err != nil {
			return nil, err
		}
	}
	w.project = project

	return w, nil
}

func (w *Workspace) SessionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

func (w *Workspace) Project() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.project
}

// SetProject trims and persists name, then notifies subscribers in the
// order they subscribed.
func (w *Workspace) SetProject(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrProjectRequired
	}

	w.mu.Lock()
	if err := w.store.Set(KeyProject, name); err != nil {
		w.mu.Unlock()
		return err
	}
	w.project = name
	subs := append([]subscription(nil), w.subs...)
	w.mu.Unlock()

	for _, s := range subs {
		s.fn(name)
	}
	return nil
}

// NewProject replaces the project with a freshly generated label.
func (w *Workspace) NewProject() (string, error) {
	label := newProjectLabel()
	if err := w.SetProject(label); err != nil {
		return "", err
	}
	return label, nil
}

// Subscribe registers fn for project changes. Calling the returned func
// removes it.
func (w *Workspace) Subscribe(fn func(project string)) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	w.subs = append(w.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			for i, s := range w.subs {
				if s.id == id {
					w.subs = append(w.subs[:i], w.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func newProjectLabel() string {
	return "projeto-" + uuid.NewString()[:8]
}
