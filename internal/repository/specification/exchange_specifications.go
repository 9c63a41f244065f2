package specification

import (
	"fmt"
	"sort"

	"fisiqia-be/internal/entity"
	"fisiqia-be/internal/repository/scope"

	"gorm.io/gorm"
)

// Matcher is the in-memory side of a filtering specification, used by the
// stores that cannot push filters down to SQL.
type Matcher interface {
	Matches(e *entity.Exchange) bool
}

// Sorter is the in-memory side of an ordering specification.
type Sorter interface {
	Sort(items []*entity.Exchange)
}

// BySessionID filters exchanges of one session
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

func (s BySessionID) Matches(e *entity.Exchange) bool {
	return e.SessionId == s.SessionID
}

// ByProject filters exchanges recorded for a project label
type ByProject struct {
	Project string
}

func (s ByProject) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project = ?", s.Project)
}

func (s ByProject) Matches(e *entity.Exchange) bool {
	return e.Project == s.Project
}

// BySection filters by section key
type BySection struct {
	Section string
}

func (s BySection) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("section = ?", s.Section)
}

func (s BySection) Matches(e *entity.Exchange) bool {
	return e.Section == s.Section
}

// OrderByCreatedAt orders by append time. In memory, ties keep insertion order.
type OrderByCreatedAt struct {
	Desc bool
}

func (s OrderByCreatedAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Scopes(scope.Chronological(s.Desc))
}

func (s OrderByCreatedAt) Sort(items []*entity.Exchange) {
	sort.SliceStable(items, func(i, j int) bool {
		if s.Desc {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

// SessionOf returns the session id named by a BySessionID spec, if any.
func SessionOf(specs []Specification) (string, bool) {
	for _, spec := range specs {
		if s, ok := spec.(BySessionID); ok {
			return s.SessionID, true
		}
	}
	return "", false
}

// Evaluate applies specs to items in memory. It returns a new slice and
// rejects specs that have no in-memory side.
func Evaluate(items []*entity.Exchange, specs ...Specification) ([]*entity.Exchange, error) {
	var sorters []Sorter
	var matchers []Matcher
	for _, spec := range specs {
		switch s := spec.(type) {
		case Matcher:
			matchers = append(matchers, s)
		case Sorter:
			sorters = append(sorters, s)
		default:
			return nil, fmt.Errorf("specification %T cannot be evaluated in memory", spec)
		}
	}

	out := make([]*entity.Exchange, 0, len(items))
	for _, item := range items {
		keep := true
		for _, m := range matchers {
			if !m.Matches(item) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}

	for _, s := range sorters {
		s.Sort(out)
	}
	return out, nil
}
