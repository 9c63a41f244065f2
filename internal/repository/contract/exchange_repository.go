package contract

import (
	"context"

	"fisiqia-be/internal/entity"
	"fisiqia-be/internal/repository/specification"
)

// ExchangeRepository is the append-only history of a session.
// Implementations must tolerate concurrent appends to the same session.
type ExchangeRepository interface {
	Append(ctx context.Context, exchange *entity.Exchange) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
