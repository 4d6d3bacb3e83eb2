package db

import "gorm.io/gorm"

// Scope is the identity a repository call runs as. Audits and their responses
// are visible to their owner and to administrators only; anything else reads
// as ErrNotFound.
type Scope struct {
	ActorID string
	Admin   bool
}

// Allows reports whether a record owned by ownerID is visible in this scope.
func (s Scope) Allows(ownerID string) bool {
	return s.Admin || (s.ActorID != "" && s.ActorID == ownerID)
}

func (s Scope) owned(tx *gorm.DB, column string) *gorm.DB {
	if s.Admin {
		return tx
	}
	return tx.Where(column+" = ?", s.ActorID)
}
