package repository

import (
	"context"

	"gescom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DepotRepository interface {
	Create(ctx context.Context, d *model.Depot) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Depot, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Depot, error)
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Depot, error)
	FindByNom(ctx context.Context, nom string) (*model.Depot, error)
	List(ctx context.Context) ([]model.Depot, error)
	Update(ctx context.Context, d *model.Depot) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type depotRepo struct{ db *gorm.DB }

func NewDepotRepository(db *gorm.DB) DepotRepository { return &depotRepo{db: db} }

func (r *depotRepo) Create(ctx context.Context, d *model.Depot) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *depotRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Depot, error) {
	var d model.Depot
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

// FindByIDTx reads the depot under a share lock so that a concurrent delete
// waits for the caller's transaction.
func (r *depotRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Depot, error) {
	var d model.Depot
	err := forShare(tx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *depotRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Depot, error) {
	var d model.Depot
	err := forUpdate(tx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *depotRepo) FindByNom(ctx context.Context, nom string) (*model.Depot, error) {
	var d model.Depot
	err := r.db.WithContext(ctx).Where("nom = ?", nom).First(&d).Error
	return &d, err
}

func (r *depotRepo) List(ctx context.Context) ([]model.Depot, error) {
	var depots []model.Depot
	err := r.db.WithContext(ctx).Order("nom ASC").Find(&depots).Error
	return depots, err
}

func (r *depotRepo) Update(ctx context.Context, d *model.Depot) error {
	return r.db.WithContext(ctx).Model(&model.Depot{}).Where("id = ?", d.ID).
		Select("nom", "description").Updates(d).Error
}

func (r *depotRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Depot{}, "id = ?", id).Error
}

// ── StockDepot ────────────────────────────────────────────────────────────────

// StockDepotRepository is the data access contract of the per-depot ledger.
// Every Tx read locks the returned rows.
type StockDepotRepository interface {
	FindForUpdateTx(tx *gorm.DB, articleID, depotID uuid.UUID) (*model.StockDepot, error)
	ListByDepotForUpdateTx(tx *gorm.DB, depotID uuid.UUID) ([]model.StockDepot, error)
	CreateTx(tx *gorm.DB, s *model.StockDepot) error
	UpdateQteTx(tx *gorm.DB, id uuid.UUID, qte decimal.Decimal) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	SumByArticleTx(tx *gorm.DB, articleID uuid.UUID) (decimal.Decimal, error)

	ListByDepot(ctx context.Context, depotID uuid.UUID) ([]model.StockDepot, error)
	ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.StockDepot, error)
}

type stockDepotRepo struct{ db *gorm.DB }

func NewStockDepotRepository(db *gorm.DB) StockDepotRepository { return &stockDepotRepo{db: db} }

func (r *stockDepotRepo) FindForUpdateTx(tx *gorm.DB, articleID, depotID uuid.UUID) (*model.StockDepot, error) {
	var s model.StockDepot
	err := forUpdate(tx).Where("article_id = ? AND depot_id = ?", articleID, depotID).First(&s).Error
	return &s, err
}

func (r *stockDepotRepo) ListByDepotForUpdateTx(tx *gorm.DB, depotID uuid.UUID) ([]model.StockDepot, error) {
	var rows []model.StockDepot
	err := forUpdate(tx).Where("depot_id = ?", depotID).Order("article_id").Find(&rows).Error
	return rows, err
}

func (r *stockDepotRepo) CreateTx(tx *gorm.DB, s *model.StockDepot) error {
	return tx.Omit("Article", "Depot").Create(s).Error
}

func (r *stockDepotRepo) UpdateQteTx(tx *gorm.DB, id uuid.UUID, qte decimal.Decimal) error {
	return tx.Model(&model.StockDepot{}).Where("id = ?", id).Update("qte", qte).Error
}

func (r *stockDepotRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.StockDepot{}, "id = ?", id).Error
}

func (r *stockDepotRepo) SumByArticleTx(tx *gorm.DB, articleID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Model(&model.StockDepot{}).
		Select("COALESCE(SUM(qte), 0)").
		Where("article_id = ?", articleID).
		Scan(&sum).Error
	return sum, err
}

func (r *stockDepotRepo) ListByDepot(ctx context.Context, depotID uuid.UUID) ([]model.StockDepot, error) {
	var rows []model.StockDepot
	err := r.db.WithContext(ctx).Preload("Article").
		Where("depot_id = ?", depotID).Find(&rows).Error
	return rows, err
}

func (r *stockDepotRepo) ListByArticle(ctx context.Context, articleID uuid.UUID) ([]model.StockDepot, error) {
	var rows []model.StockDepot
	err := r.db.WithContext(ctx).Preload("Depot").
		Where("article_id = ?", articleID).Find(&rows).Error
	return rows, err
}
