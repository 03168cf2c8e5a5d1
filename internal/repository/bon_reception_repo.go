package repository

import (
	"context"

	"gescom/internal/model"
	"gescom/internal/numerotation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BonReceptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.BonReception, error)
	List(ctx context.Context, filter DocumentFilter) ([]model.BonReception, int64, error)
	NextNumero(ctx context.Context, annee int) (string, error)

	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BonReception, error)
	CountByBonCommandeTx(tx *gorm.DB, bonCommandeID uuid.UUID) (int64, error)
	NextNumeroTx(tx *gorm.DB, annee int) (string, error)
	CreateTx(tx *gorm.DB, br *model.BonReception) error
	UpdateTx(tx *gorm.DB, br *model.BonReception) error
	CreateLigneTx(tx *gorm.DB, l *model.BonReceptionLigne) error
	UpdateLigneTx(tx *gorm.DB, l *model.BonReceptionLigne) error
	DeleteLigneTx(tx *gorm.DB, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type bonReceptionRepo struct{ db *gorm.DB }

func NewBonReceptionRepository(db *gorm.DB) BonReceptionRepository {
	return &bonReceptionRepo{db: db}
}

func (r *bonReceptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BonReception, error) {
	var br model.BonReception
	err := r.db.WithContext(ctx).
		Preload("Fournisseur").Preload("BonCommande").Preload("Lignes.Article").
		First(&br, "id = ?", id).Error
	return &br, err
}

func (r *bonReceptionRepo) List(ctx context.Context, filter DocumentFilter) ([]model.BonReception, int64, error) {
	q := filter.apply(r.db.WithContext(ctx).Model(&model.BonReception{}), "fournisseur_id", "date_reception")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.Limit)
	var bons []model.BonReception
	err := q.Preload("Fournisseur").Preload("BonCommande").Preload("Lignes.Article").
		Order("date_reception DESC, numero_reception DESC").
		Offset(offset).Limit(limit).Find(&bons).Error
	return bons, total, err
}

func (r *bonReceptionRepo) NextNumero(ctx context.Context, annee int) (string, error) {
	dernier, err := lastNumero(r.db.WithContext(ctx), "bons_reception", "numero_reception", numerotation.BonReception, annee)
	if err != nil {
		return "", err
	}
	return numerotation.Suivant(numerotation.BonReception, annee, dernier), nil
}

func (r *bonReceptionRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BonReception, error) {
	var br model.BonReception
	err := forUpdate(tx).Preload("Lignes").First(&br, "id = ?", id).Error
	return &br, err
}

func (r *bonReceptionRepo) CountByBonCommandeTx(tx *gorm.DB, bonCommandeID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.BonReception{}).Where("bon_commande_id = ?", bonCommandeID).Count(&n).Error
	return n, err
}

func (r *bonReceptionRepo) NextNumeroTx(tx *gorm.DB, annee int) (string, error) {
	return nextNumeroTx(tx, "bons_reception", "numero_reception", numerotation.BonReception, annee)
}

func (r *bonReceptionRepo) CreateTx(tx *gorm.DB, br *model.BonReception) error {
	if err := tx.Omit(clause.Associations).Create(br).Error; err != nil {
		return err
	}
	for i := range br.Lignes {
		br.Lignes[i].BonReceptionID = br.ID
		if err := r.CreateLigneTx(tx, &br.Lignes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *bonReceptionRepo) UpdateTx(tx *gorm.DB, br *model.BonReception) error {
	return tx.Omit(clause.Associations).Save(br).Error
}

func (r *bonReceptionRepo) CreateLigneTx(tx *gorm.DB, l *model.BonReceptionLigne) error {
	return tx.Omit(clause.Associations).Create(l).Error
}

func (r *bonReceptionRepo) UpdateLigneTx(tx *gorm.DB, l *model.BonReceptionLigne) error {
	return tx.Omit(clause.Associations).Save(l).Error
}

func (r *bonReceptionRepo) DeleteLigneTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.BonReceptionLigne{}, "id = ?", id).Error
}

func (r *bonReceptionRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("bon_reception_id = ?", id).Delete(&model.BonReceptionLigne{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.BonReception{}, "id = ?", id).Error
}
