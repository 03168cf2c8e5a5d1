package repository

import (
	"context"

	"gescom/internal/model"
	"gescom/internal/numerotation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransfertFilter defines filters for listing transfers.
type TransfertFilter struct {
	Statut  string
	DepotID *uuid.UUID // source or destination
	Page    int
	Limit   int
}

type TransfertRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transfert, error)
	List(ctx context.Context, filter TransfertFilter) ([]model.Transfert, int64, error)
	NextNumero(ctx context.Context, annee int) (string, error)

	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Transfert, error)
	CountByDepotTx(tx *gorm.DB, depotID uuid.UUID) (int64, error)
	NextNumeroTx(tx *gorm.DB, annee int) (string, error)
	CreateTx(tx *gorm.DB, t *model.Transfert) error
	UpdateTx(tx *gorm.DB, t *model.Transfert) error
	CreateItemTx(tx *gorm.DB, it *model.TransfertItem) error
	UpdateItemTx(tx *gorm.DB, it *model.TransfertItem) error
	DeleteItemTx(tx *gorm.DB, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type transfertRepo struct{ db *gorm.DB }

func NewTransfertRepository(db *gorm.DB) TransfertRepository { return &transfertRepo{db: db} }

func (r *transfertRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transfert, error) {
	var t model.Transfert
	err := r.db.WithContext(ctx).Preload("Items.Article").First(&t, "id = ?", id).Error
	return &t, err
}

func (r *transfertRepo) List(ctx context.Context, filter TransfertFilter) ([]model.Transfert, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transfert{})
	if filter.Statut != "" {
		q = q.Where("statut = ?", filter.Statut)
	}
	if filter.DepotID != nil {
		q = q.Where("depot_source_id = ? OR depot_destination_id = ?", *filter.DepotID, *filter.DepotID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.Limit)
	var ts []model.Transfert
	err := q.Preload("Items.Article").
		Order("date_transfert DESC, numero DESC").
		Offset(offset).Limit(limit).Find(&ts).Error
	return ts, total, err
}

func (r *transfertRepo) NextNumero(ctx context.Context, annee int) (string, error) {
	dernier, err := lastNumero(r.db.WithContext(ctx), "transferts", "numero", numerotation.Transfert, annee)
	if err != nil {
		return "", err
	}
	return numerotation.Suivant(numerotation.Transfert, annee, dernier), nil
}

func (r *transfertRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Transfert, error) {
	var t model.Transfert
	err := forUpdate(tx).Preload("Items").First(&t, "id = ?", id).Error
	return &t, err
}

// CountByDepotTx counts the transfers of any status that reference the depot.
func (r *transfertRepo) CountByDepotTx(tx *gorm.DB, depotID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.Transfert{}).
		Where("depot_source_id = ? OR depot_destination_id = ?", depotID, depotID).
		Count(&n).Error
	return n, err
}

func (r *transfertRepo) NextNumeroTx(tx *gorm.DB, annee int) (string, error) {
	return nextNumeroTx(tx, "transferts", "numero", numerotation.Transfert, annee)
}

func (r *transfertRepo) CreateTx(tx *gorm.DB, t *model.Transfert) error {
	if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
		return err
	}
	for i := range t.Items {
		t.Items[i].TransfertID = t.ID
		if err := r.CreateItemTx(tx, &t.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *transfertRepo) UpdateTx(tx *gorm.DB, t *model.Transfert) error {
	return tx.Omit(clause.Associations).Save(t).Error
}

func (r *transfertRepo) CreateItemTx(tx *gorm.DB, it *model.TransfertItem) error {
	return tx.Omit(clause.Associations).Create(it).Error
}

func (r *transfertRepo) UpdateItemTx(tx *gorm.DB, it *model.TransfertItem) error {
	return tx.Omit(clause.Associations).Save(it).Error
}

func (r *transfertRepo) DeleteItemTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.TransfertItem{}, "id = ?", id).Error
}

func (r *transfertRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("transfert_id = ?", id).Delete(&model.TransfertItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Transfert{}, "id = ?", id).Error
}
