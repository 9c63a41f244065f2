package specification

import "gorm.io/gorm"

// Specification narrows or orders a gorm query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
