package memory

import (
	"context"
	"sync"
	"time"

	"fisiqia-be/internal/entity"
	"fisiqia-be/internal/repository/contract"
	"fisiqia-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type sessionLog struct {
	mu    sync.Mutex
	items []*entity.Exchange
}

// ExchangeRepository keeps each session's history in process. A session
// expires ttl after its last append.
type ExchangeRepository struct {
	cache *cache.Cache
	mu    sync.Mutex // guards get-or-create of session logs
}

func NewExchangeRepository(ttl time.Duration) contract.ExchangeRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	// Purge expired sessions every 10 minutes
	return &ExchangeRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *ExchangeRepository) session(sessionID string) *sessionLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(sessionID); found {
		log := x.(*sessionLog)
		r.cache.SetDefault(sessionID, log)
		return log
	}
	log := &sessionLog{}
	r.cache.SetDefault(sessionID, log)
	return log
}

func (r *ExchangeRepository) Append(ctx context.Context, exchange *entity.Exchange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if exchange.Id == uuid.Nil {
		exchange.Id = uuid.New()
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}

	stored := clone(exchange)
	log := r.session(exchange.SessionId)
	log.mu.Lock()
	log.items = append(log.items, stored)
	log.mu.Unlock()
	return nil
}

func (r *ExchangeRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var logs []*sessionLog
	if sessionID, ok := specification.SessionOf(specs); ok {
		if x, found := r.cache.Get(sessionID); found {
			logs = append(logs, x.(*sessionLog))
		}
	} else {
		for _, item := range r.cache.Items() {
			logs = append(logs, item.Object.(*sessionLog))
		}
		specs = append([]specification.Specification{specification.OrderByCreatedAt{}}, specs...)
	}

	var items []*entity.Exchange
	for _, log := range logs {
		log.mu.Lock()
		for _, e := range log.items {
			items = append(items, clone(e))
		}
		log.mu.Unlock()
	}

	return specification.Evaluate(items, specs...)
}

func (r *ExchangeRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	items, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func clone(e *entity.Exchange) *entity.Exchange {
	c := *e
	c.References = append([]string{}, e.References...)
	return &c
}
