package repository

import (
	"context"
	"time"

	"gescom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MouvementStockFilter defines filters for listing stock movements.
type MouvementStockFilter struct {
	ArticleID   *uuid.UUID
	ReferenceID *uuid.UUID
	Type        string
	Depuis      *time.Time
	Jusqua      *time.Time
	Page        int
	Limit       int
}

type MouvementStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MouvementStock) error
	List(ctx context.Context, filter MouvementStockFilter) ([]model.MouvementStock, int64, error)
}

type mouvementStockRepo struct{ db *gorm.DB }

func NewMouvementStockRepository(db *gorm.DB) MouvementStockRepository {
	return &mouvementStockRepo{db: db}
}

func (r *mouvementStockRepo) CreateTx(tx *gorm.DB, m *model.MouvementStock) error {
	return tx.Omit("Article").Create(m).Error
}

func (r *mouvementStockRepo) List(ctx context.Context, filter MouvementStockFilter) ([]model.MouvementStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MouvementStock{})
	if filter.ArticleID != nil {
		q = q.Where("article_id = ?", *filter.ArticleID)
	}
	if filter.ReferenceID != nil {
		q = q.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Depuis != nil {
		q = q.Where("created_at >= ?", *filter.Depuis)
	}
	if filter.Jusqua != nil {
		q = q.Where("created_at < ?", *filter.Jusqua)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.Limit)
	var mouvements []model.MouvementStock
	err := q.Preload("Article").Order("created_at DESC").Offset(offset).Limit(limit).Find(&mouvements).Error
	return mouvements, total, err
}
