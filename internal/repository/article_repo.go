package repository

import (
	"context"

	"gescom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ArticleFilter defines filters for listing articles.
type ArticleFilter struct {
	Search      string
	CategorieID *uuid.UUID
	Actif       string // "false" = inactive, "all" = every row, else active only
	Page        int
	Limit       int
}

// ArticleRepository defines the data access contract for articles.
// Quantity counters are only written through the Tx methods.
type ArticleRepository interface {
	Create(ctx context.Context, a *model.Article) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error)
	FindByReference(ctx context.Context, reference string) (*model.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]model.Article, int64, error)
	Update(ctx context.Context, a *model.Article) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions: callers pass the tx instance.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Article, error)
	AddQuantitesTx(tx *gorm.DB, id uuid.UUID, qte, qtePhysique, qteVirtual decimal.Decimal) error
	SetQteTx(tx *gorm.DB, id uuid.UUID, qte decimal.Decimal) error
}

type articleRepo struct{ db *gorm.DB }

func NewArticleRepository(db *gorm.DB) ArticleRepository { return &articleRepo{db: db} }

func (r *articleRepo) Create(ctx context.Context, a *model.Article) error {
	return r.db.WithContext(ctx).Omit("Categorie", "SousCategorie", "Fournisseur").Create(a).Error
}

func (r *articleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	var a model.Article
	err := r.db.WithContext(ctx).
		Preload("Categorie").Preload("SousCategorie").Preload("Fournisseur").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *articleRepo) FindByReference(ctx context.Context, reference string) (*model.Article, error) {
	var a model.Article
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&a).Error
	return &a, err
}

func (r *articleRepo) List(ctx context.Context, filter ArticleFilter) ([]model.Article, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Article{})

	switch filter.Actif {
	case "false":
		q = q.Where("actif = false")
	case "all":
	default:
		q = q.Where("actif = true")
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("reference ILIKE ? OR designation ILIKE ?", like, like)
	}
	if filter.CategorieID != nil {
		q = q.Where("categorie_id = ? OR sous_categorie_id = ?", *filter.CategorieID, *filter.CategorieID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(filter.Page, filter.Limit)
	var articles []model.Article
	err := q.Preload("Categorie").Preload("Fournisseur").
		Order("designation ASC").Offset(offset).Limit(limit).Find(&articles).Error
	return articles, total, err
}

// Update writes descriptive and pricing fields. Quantity columns are never
// part of the statement.
func (r *articleRepo) Update(ctx context.Context, a *model.Article) error {
	return r.db.WithContext(ctx).Model(&model.Article{}).Where("id = ?", a.ID).
		Select("reference", "designation", "description", "prix_achat_ht", "prix_vente_ht",
			"tva", "taux_fodec", "categorie_id", "sous_categorie_id", "fournisseur_id", "actif").
		Updates(a).Error
}

func (r *articleRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Article{}).Where("id = ?", id).Update("actif", false).Error
}

func (r *articleRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Article, error) {
	var a model.Article
	err := forUpdate(tx).First(&a, "id = ?", id).Error
	return &a, err
}

// AddQuantitesTx applies the deltas in SQL so concurrent writers never
// overwrite each other.
func (r *articleRepo) AddQuantitesTx(tx *gorm.DB, id uuid.UUID, qte, qtePhysique, qteVirtual decimal.Decimal) error {
	return tx.Model(&model.Article{}).Where("id = ?", id).Updates(map[string]interface{}{
		"qte":          gorm.Expr("qte + ?", qte),
		"qte_physique": gorm.Expr("qte_physique + ?", qtePhysique),
		"qte_virtual":  gorm.Expr("qte_virtual + ?", qteVirtual),
	}).Error
}

func (r *articleRepo) SetQteTx(tx *gorm.DB, id uuid.UUID, qte decimal.Decimal) error {
	return tx.Model(&model.Article{}).Where("id = ?", id).Update("qte", qte).Error
}
