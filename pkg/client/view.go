package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"fisiqia-be/pkg/section"
)

var (
	ErrQuestionRequired = errors.New("digite uma pergunta")
	ErrBusy             = errors.New("aguarde a resposta anterior")
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Backend is the part of *API a View needs.
type Backend interface {
	Ask(ctx context.Context, sec section.Section, project, session, question string) (*Answer, error)
	DownloadReport(ctx context.Context, project, session string) ([]byte, error)
}

// Identity supplies the project and session a View sends. *Workspace satisfies it.
type Identity interface {
	Project() string
	SessionID() string
}

// Snapshot is a copy of a View's state.
type Snapshot struct {
	State  State
	Answer *Answer
	Err    error
}

// View drives one section through idle, loading, success and error.
// At most one request is in flight per View.
type View struct {
	sec      section.Section
	identity Identity
	backend  Backend

	mu     sync.Mutex
	state  State
	answer *Answer
	err    error
}

func NewView(sec section.Section, identity Identity, backend Backend) *View {
	return &View{sec: sec, identity: identity, backend: backend}
}

func (v *View) Section() section.Section { return v.sec }

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{State: v.state, Answer: v.answer, Err: v.err}
}

// Enter loads the section's default content. Sections without
// auto-load stay idle.
func (v *View) Enter(ctx context.Context) error {
	if !v.sec.AutoLoad() {
		return nil
	}
	return v.ask(ctx, "")
}

// Submit sends a question typed by the user.
func (v *View) Submit(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return v.fail(ErrQuestionRequired)
	}
	return v.ask(ctx, question)
}

// Download writes the report PDF to w. The view goes back to idle on success.
func (v *View) Download(ctx context.Context, w io.Writer) error {
	if !v.sec.Equal(section.Report) {
		return fmt.Errorf("section %s has no report", v.sec.Key())
	}
	project, err := v.begin()
	if err != nil {
		return err
	}

	pdf, err := v.backend.DownloadReport(ctx, project, v.identity.SessionID())
	if err == nil {
		_, err = w.Write(pdf)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state, v.err = StateError, err
		return err
	}
	v.state, v.err = StateIdle, nil
	return nil
}

func (v *View) ask(ctx context.Context, question string) error {
	if !v.sec.Askable() {
		return fmt.Errorf("section %s does not take questions", v.sec.Key())
	}
	project, err := v.begin()
	if err != nil {
		return err
	}

	answer, err := v.backend.Ask(ctx, v.sec, project, v.identity.SessionID(), question)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state, v.answer, v.err = StateError, nil, err
		return err
	}
	v.state, v.answer, v.err = StateSuccess, answer, nil
	return nil
}

// begin moves the view to loading, or reports why it cannot.
func (v *View) begin() (string, error) {
	project := strings.TrimSpace(v.identity.Project())

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateLoading {
		return "", ErrBusy
	}
	if project == "" {
		v.state, v.answer, v.err = StateError, nil, ErrProjectRequired
		return "", ErrProjectRequired
	}
	v.state, v.err = StateLoading, nil
	return project, nil
}

func (v *View) fail(err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateLoading {
		return ErrBusy
	}
	v.state, v.answer, v.err = StateError, nil, err
	return err
}
