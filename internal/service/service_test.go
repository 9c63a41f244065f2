package service

import (
	"context"
	"errors"
	"sync"

	"fisiqia-be/internal/entity"
	"fisiqia-be/internal/repository/specification"
	"fisiqia-be/pkg/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// failingRepository rejects every call.
type failingRepository struct{}

var errStore = errors.New("disk full")

func (failingRepository) Append(context.Context, *entity.Exchange) error { return errStore }

func (failingRepository) FindAll(context.Context, ...specification.Specification) ([]*entity.Exchange, error) {
	return nil, errStore
}

func (failingRepository) Count(context.Context, ...specification.Specification) (int64, error) {
	return 0, errStore
}

const structuredReply = `{"content":"1. Garrafa PET\n2. Mangueira\n3. Fita","books":["Halliday. Fundamentos de Física",{"author":"Tipler","title":"Física"}],"notes":"baixo custo"}`
