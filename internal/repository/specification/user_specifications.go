package specification

import "gorm.io/gorm"

type ByClerkID struct {
	ClerkID string
}

func (s ByClerkID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("clerk_id = ?", s.ClerkID)
}
