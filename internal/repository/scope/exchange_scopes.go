package scope

import "gorm.io/gorm"

// Chronological orders rows by created_at. The primary key breaks ties so
// paging over equal timestamps stays deterministic.
func Chronological(desc bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if desc {
			return db.Order("created_at DESC").Order("id DESC")
		}
		return db.Order("created_at ASC").Order("id ASC")
	}
}
