package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentFilter is shared by every commercial document listing.
// TiersID is the supplier or client the document belongs to.
type DocumentFilter struct {
	Statut  string
	TiersID *uuid.UUID
	Depuis  *time.Time
	Jusqua  *time.Time
	Page    int
	Limit   int
}

func (f DocumentFilter) apply(q *gorm.DB, tiersColumn, dateColumn string) *gorm.DB {
	if f.Statut != "" {
		q = q.Where("statut = ?", f.Statut)
	}
	if f.TiersID != nil && tiersColumn != "" {
		q = q.Where(tiersColumn+" = ?", *f.TiersID)
	}
	if f.Depuis != nil {
		q = q.Where(dateColumn+" >= ?", *f.Depuis)
	}
	if f.Jusqua != nil {
		q = q.Where(dateColumn+" < ?", *f.Jusqua)
	}
	return q
}
