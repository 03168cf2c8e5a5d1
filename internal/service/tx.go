package service

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner opens the transaction every multi-row stock mutation runs in.
// A callback error rolls the whole transaction back.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct{ db *gorm.DB }

func NewTxRunner(db *gorm.DB) TxRunner { return &gormTxRunner{db: db} }

func (r *gormTxRunner) RunTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return runTx(ctx, r.db, fn)
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
