package mapper

import (
	"fisiqia-be/internal/entity"
	"fisiqia-be/internal/model"

	"gorm.io/datatypes"
)

type ExchangeMapper struct{}

func NewExchangeMapper() *ExchangeMapper {
	return &ExchangeMapper{}
}

func (m *ExchangeMapper) ToEntity(e *model.Exchange) *entity.Exchange {
	if e == nil {
		return nil
	}

	refs := make([]string, 0, len(e.References))
	refs = append(refs, e.References...)

	return &entity.Exchange{
		Id:         e.Id,
		SessionId:  e.SessionId,
		Project:    e.Project,
		Section:    e.Section,
		Question:   e.Question,
		Prompt:     e.Prompt,
		Answer:     e.Answer,
		References: refs,
		Notes:      e.Notes,
		Provider:   e.Provider,
		Model:      e.Model,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *ExchangeMapper) ToModel(e *entity.Exchange) *model.Exchange {
	if e == nil {
		return nil
	}

	refs := datatypes.JSONSlice[string]{}
	refs = append(refs, e.References...)

	return &model.Exchange{
		Id:         e.Id,
		SessionId:  e.SessionId,
		Project:    e.Project,
		Section:    e.Section,
		Question:   e.Question,
		Prompt:     e.Prompt,
		Answer:     e.Answer,
		References: refs,
		Notes:      e.Notes,
		Provider:   e.Provider,
		Model:      e.Model,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *ExchangeMapper) ToEntities(models []*model.Exchange) []*entity.Exchange {
	out := make([]*entity.Exchange, 0, len(models))
	for _, e := range models {
		out = append(out, m.ToEntity(e))
	}
	return out
}
