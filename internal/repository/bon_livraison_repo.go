package repository

import (
	"context"

	"gescom/internal/model"
	"gescom/internal/numerotation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BonLivraisonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.BonLivraison, error)
	List(ctx context.Context, filter DocumentFilter) ([]model.BonLivraison, int64, error)
	NextNumero(ctx context.Context, annee int) (string, error)

	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BonLivraison, error)
	CountByCommandeClientTx(tx *gorm.DB, commandeID uuid.UUID) (int64, error)
	NextNumeroTx(tx *gorm.DB, annee int) (string, error)
	CreateTx(tx *gorm.DB, bl *model.BonLivraison) error
	UpdateTx(tx *gorm.DB, bl *model.BonLivraison) error
	CreateLigneTx(tx *gorm.DB, l *model.BonLivraisonLigne) error
	UpdateLigneTx(tx *gorm.DB, l *model.BonLivraisonLigne) error
	DeleteLigneTx(tx *gorm.DB, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type bonLivraisonRepo struct{ db *gorm.DB }

func NewBonLivraisonRepository(db *gorm.DB) BonLivraisonRepository {
	return &bonLivraisonRepo{db: db}
}

func (r *bonLivraisonRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BonLivraison, error) {
	var bl model.BonLivraison
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("ClientWebsite").Preload("BonCommandeClient").Preload("Lignes.Article").
		First(&bl, "id = ?", id).Error
	return &bl, err
}

func (r *bonLivraisonRepo) List(ctx context.Context, filter DocumentFilter) ([]model.BonLivraison, int64, error) {
	q := filter.apply(r.db.WithContext(ctx).Model(&model.BonLivraison{}), "client_id", "date_livraison")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.Limit)
	var bons []model.BonLivraison
	err := q.Preload("Client").Preload("ClientWebsite").Preload("BonCommandeClient").Preload("Lignes.Article").
		Order("date_livraison DESC, numero_livraison DESC").
		Offset(offset).Limit(limit).Find(&bons).Error
	return bons, total, err
}

func (r *bonLivraisonRepo) NextNumero(ctx context.Context, annee int) (string, error) {
	dernier, err := lastNumero(r.db.WithContext(ctx), "bons_livraison", "numero_livraison", numerotation.BonLivraison, annee)
	if err != nil {
		return "", err
	}
	return numerotation.Suivant(numerotation.BonLivraison, annee, dernier), nil
}

func (r *bonLivraisonRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BonLivraison, error) {
	var bl model.BonLivraison
	err := forUpdate(tx).Preload("Lignes").First(&bl, "id = ?", id).Error
	return &bl, err
}

func (r *bonLivraisonRepo) CountByCommandeClientTx(tx *gorm.DB, commandeID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.BonLivraison{}).Where("bon_commande_client_id = ?", commandeID).Count(&n).Error
	return n, err
}

func (r *bonLivraisonRepo) NextNumeroTx(tx *gorm.DB, annee int) (string, error) {
	return nextNumeroTx(tx, "bons_livraison", "numero_livraison", numerotation.BonLivraison, annee)
}

func (r *bonLivraisonRepo) CreateTx(tx *gorm.DB, bl *model.BonLivraison) error {
	if err := tx.Omit(clause.Associations).Create(bl).Error; err != nil {
		return err
	}
	for i := range bl.Lignes {
		bl.Lignes[i].BonLivraisonID = bl.ID
		if err := r.CreateLigneTx(tx, &bl.Lignes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *bonLivraisonRepo) UpdateTx(tx *gorm.DB, bl *model.BonLivraison) error {
	return tx.Omit(clause.Associations).Save(bl).Error
}

func (r *bonLivraisonRepo) CreateLigneTx(tx *gorm.DB, l *model.BonLivraisonLigne) error {
	return tx.Omit(clause.Associations).Create(l).Error
}

func (r *bonLivraisonRepo) UpdateLigneTx(tx *gorm.DB, l *model.BonLivraisonLigne) error {
	return tx.Omit(clause.Associations).Save(l).Error
}

func (r *bonLivraisonRepo) DeleteLigneTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.BonLivraisonLigne{}, "id = ?", id).Error
}

func (r *bonLivraisonRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("bon_livraison_id = ?", id).Delete(&model.BonLivraisonLigne{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.BonLivraison{}, "id = ?", id).Error
}
