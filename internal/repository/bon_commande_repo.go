package repository

import (
	"context"

	"gescom/internal/model"
	"gescom/internal/numerotation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BonCommandeRepository is the data access contract for supplier purchase orders.
type BonCommandeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.BonCommande, error)
	List(ctx context.Context, filter DocumentFilter) ([]model.BonCommande, int64, error)
	NextNumero(ctx context.Context, annee int) (string, error)

	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BonCommande, error)
	NextNumeroTx(tx *gorm.DB, annee int) (string, error)
	CreateTx(tx *gorm.DB, bc *model.BonCommande) error
	UpdateTx(tx *gorm.DB, bc *model.BonCommande) error
	CreateLigneTx(tx *gorm.DB, l *model.BonCommandeLigne) error
	UpdateLigneTx(tx *gorm.DB, l *model.BonCommandeLigne) error
	DeleteLigneTx(tx *gorm.DB, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type bonCommandeRepo struct{ db *gorm.DB }

func NewBonCommandeRepository(db *gorm.DB) BonCommandeRepository {
	return &bonCommandeRepo{db: db}
}

func (r *bonCommandeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BonCommande, error) {
	var bc model.BonCommande
	err := r.db.WithContext(ctx).
		Preload("Fournisseur").Preload("Lignes.Article").
		First(&bc, "id = ?", id).Error
	return &bc, err
}

func (r *bonCommandeRepo) List(ctx context.Context, filter DocumentFilter) ([]model.BonCommande, int64, error) {
	q := filter.apply(r.db.WithContext(ctx).Model(&model.BonCommande{}), "fournisseur_id", "date_commande")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.Limit)
	var bons []model.BonCommande
	err := q.Preload("Fournisseur").Preload("Lignes.Article").
		Order("date_commande DESC, numero_commande DESC").
		Offset(offset).Limit(limit).Find(&bons).Error
	return bons, total, err
}

func (r *bonCommandeRepo) NextNumero(ctx context.Context, annee int) (string, error) {
	dernier, err := lastNumero(r.db.WithContext(ctx), "bons_commande", "numero_commande", numerotation.BonCommande, annee)
	if err != nil {
		return "", err
	}
	return numerotation.Suivant(numerotation.BonCommande, annee, dernier), nil
}

func (r *bonCommandeRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BonCommande, error) {
	var bc model.BonCommande
	err := forUpdate(tx).Preload("Lignes").First(&bc, "id = ?", id).Error
	return &bc, err
}

func (r *bonCommandeRepo) NextNumeroTx(tx *gorm.DB, annee int) (string, error) {
	return nextNumeroTx(tx, "bons_commande", "numero_commande", numerotation.BonCommande, annee)
}

func (r *bonCommandeRepo) CreateTx(tx *gorm.DB, bc *model.BonCommande) error {
	if err := tx.Omit(clause.Associations).Create(bc).Error; err != nil {
		return err
	}
	for i := range bc.Lignes {
		bc.Lignes[i].BonCommandeID = bc.ID
		if err := r.CreateLigneTx(tx, &bc.Lignes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *bonCommandeRepo) UpdateTx(tx *gorm.DB, bc *model.BonCommande) error {
	return tx.Omit(clause.Associations).Save(bc).Error
}

func (r *bonCommandeRepo) CreateLigneTx(tx *gorm.DB, l *model.BonCommandeLigne) error {
	return tx.Omit(clause.Associations).Create(l).Error
}

func (r *bonCommandeRepo) UpdateLigneTx(tx *gorm.DB, l *model.BonCommandeLigne) error {
	return tx.Omit(clause.Associations).Save(l).Error
}

func (r *bonCommandeRepo) DeleteLigneTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.BonCommandeLigne{}, "id = ?", id).Error
}

func (r *bonCommandeRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("bon_commande_id = ?", id).Delete(&model.BonCommandeLigne{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.BonCommande{}, "id = ?", id).Error
}
