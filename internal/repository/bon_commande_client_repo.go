package repository

import (
	"context"

	"gescom/internal/model"
	"gescom/internal/numerotation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BonCommandeClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.BonCommandeClient, error)
	List(ctx context.Context, filter DocumentFilter) ([]model.BonCommandeClient, int64, error)
	NextNumero(ctx context.Context, annee int) (string, error)

	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BonCommandeClient, error)
	NextNumeroTx(tx *gorm.DB, annee int) (string, error)
	CreateTx(tx *gorm.DB, bc *model.BonCommandeClient) error
	UpdateTx(tx *gorm.DB, bc *model.BonCommandeClient) error
	CreateLigneTx(tx *gorm.DB, l *model.BonCommandeClientLigne) error
	UpdateLigneTx(tx *gorm.DB, l *model.BonCommandeClientLigne) error
	DeleteLigneTx(tx *gorm.DB, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type bonCommandeClientRepo struct{ db *gorm.DB }

func NewBonCommandeClientRepository(db *gorm.DB) BonCommandeClientRepository {
	return &bonCommandeClientRepo{db: db}
}

func (r *bonCommandeClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BonCommandeClient, error) {
	var bc model.BonCommandeClient
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("ClientWebsite").Preload("Lignes.Article").
		First(&bc, "id = ?", id).Error
	return &bc, err
}

func (r *bonCommandeClientRepo) List(ctx context.Context, filter DocumentFilter) ([]model.BonCommandeClient, int64, error) {
	q := filter.apply(r.db.WithContext(ctx).Model(&model.BonCommandeClient{}), "client_id", "date_commande")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.Limit)
	var bons []model.BonCommandeClient
	err := q.Preload("Client").Preload("ClientWebsite").Preload("Lignes.Article").
		Order("date_commande DESC, numero_commande DESC").
		Offset(offset).Limit(limit).Find(&bons).Error
	return bons, total, err
}

func (r *bonCommandeClientRepo) NextNumero(ctx context.Context, annee int) (string, error) {
	dernier, err := lastNumero(r.db.WithContext(ctx), "bons_commande_client", "numero_commande", numerotation.BonCommandeClient, annee)
	if err != nil {
		return "", err
	}
	return numerotation.Suivant(numerotation.BonCommandeClient, annee, dernier), nil
}

func (r *bonCommandeClientRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.BonCommandeClient, error) {
	var bc model.BonCommandeClient
	err := forUpdate(tx).Preload("Lignes").First(&bc, "id = ?", id).Error
	return &bc, err
}

func (r *bonCommandeClientRepo) NextNumeroTx(tx *gorm.DB, annee int) (string, error) {
	return nextNumeroTx(tx, "bons_commande_client", "numero_commande", numerotation.BonCommandeClient, annee)
}

func (r *bonCommandeClientRepo) CreateTx(tx *gorm.DB, bc *model.BonCommandeClient) error {
	if err := tx.Omit(clause.Associations).Create(bc).Error; err != nil {
		return err
	}
	for i := range bc.Lignes {
		bc.Lignes[i].BonCommandeClientID = bc.ID
		if err := r.CreateLigneTx(tx, &bc.Lignes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *bonCommandeClientRepo) UpdateTx(tx *gorm.DB, bc *model.BonCommandeClient) error {
	return tx.Omit(clause.Associations).Save(bc).Error
}

func (r *bonCommandeClientRepo) CreateLigneTx(tx *gorm.DB, l *model.BonCommandeClientLigne) error {
	return tx.Omit(clause.Associations).Create(l).Error
}

func (r *bonCommandeClientRepo) UpdateLigneTx(tx *gorm.DB, l *model.BonCommandeClientLigne) error {
	return tx.Omit(clause.Associations).Save(l).Error
}

func (r *bonCommandeClientRepo) DeleteLigneTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.BonCommandeClientLigne{}, "id = ?", id).Error
}

func (r *bonCommandeClientRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("bon_commande_client_id = ?", id).Delete(&model.BonCommandeClientLigne{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.BonCommandeClient{}, "id = ?", id).Error
}
