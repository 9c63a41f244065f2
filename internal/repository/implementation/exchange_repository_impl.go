package implementation

import (
	"context"
	"time"

	"fisiqia-be/internal/entity"
	"fisiqia-be/internal/mapper"
	"fisiqia-be/internal/model"
	"fisiqia-be/internal/repository/contract"
	"fisiqia-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExchangeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExchangeMapper
}

func NewExchangeRepository(db *gorm.DB) contract.ExchangeRepository {
	return &ExchangeRepositoryImpl{
		db:     db,
		mapper: mapper.NewExchangeMapper(),
	}
}

func (r *ExchangeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func prepare(exchange *entity.Exchange) {
	if exchange.Id == uuid.Nil {
		exchange.Id = uuid.New()
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}
	if exchange.References == nil {
		exchange.References = []string{}
	}
}

// Append inserts a new row. Rows are never updated, so concurrent appends
// to the same session cannot overwrite each other.
func (r *ExchangeRepositoryImpl) Append(ctx context.Context, exchange *entity.Exchange) error {
	prepare(exchange)
	m := r.mapper.ToModel(exchange)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ExchangeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Exchange, error) {
	if !hasOrdering(specs) {
		specs = append(specs, specification.OrderByCreatedAt{})
	}

	var models []*model.Exchange
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ExchangeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Exchange{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func hasOrdering(specs []specification.Specification) bool {
	for _, spec := range specs {
		if _, ok := spec.(specification.OrderByCreatedAt); ok {
			return true
		}
	}
	return false
}
