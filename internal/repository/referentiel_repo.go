package repository

import (
	"context"

	"gescom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Categories ────────────────────────────────────────────────────────────────

type CategorieRepository interface {
	Create(ctx context.Context, c *model.Categorie) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Categorie, error)
	List(ctx context.Context, soloActives bool) ([]model.Categorie, error)
	Update(ctx context.Context, c *model.Categorie) error
	Desactiver(ctx context.Context, id uuid.UUID) error
}

type categorieRepo struct{ db *gorm.DB }

func NewCategorieRepository(db *gorm.DB) CategorieRepository { return &categorieRepo{db: db} }

func (r *categorieRepo) Create(ctx context.Context, c *model.Categorie) error {
	return r.db.WithContext(ctx).Omit("Parent").Create(c).Error
}

func (r *categorieRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Categorie, error) {
	var c model.Categorie
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *categorieRepo) List(ctx context.Context, soloActives bool) ([]model.Categorie, error) {
	q := r.db.WithContext(ctx).Order("nom ASC")
	if soloActives {
		q = q.Where("actif = true")
	}
	var cats []model.Categorie
	err := q.Find(&cats).Error
	return cats, err
}

func (r *categorieRepo) Update(ctx context.Context, c *model.Categorie) error {
	return r.db.WithContext(ctx).Model(&model.Categorie{}).Where("id = ?", c.ID).
		Select("nom", "description", "parent_id", "actif").Updates(c).Error
}

func (r *categorieRepo) Desactiver(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Categorie{}).Where("id = ?", id).Update("actif", false).Error
}

// ── Fournisseurs ──────────────────────────────────────────────────────────────

type FournisseurRepository interface {
	Create(ctx context.Context, f *model.Fournisseur) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Fournisseur, error)
	FindByMatricule(ctx context.Context, matricule string) (*model.Fournisseur, error)
	List(ctx context.Context) ([]model.Fournisseur, error)
	Update(ctx context.Context, f *model.Fournisseur) error
	Desactiver(ctx context.Context, id uuid.UUID) error
}

type fournisseurRepo struct{ db *gorm.DB }

func NewFournisseurRepository(db *gorm.DB) FournisseurRepository { return &fournisseurRepo{db: db} }

func (r *fournisseurRepo) Create(ctx context.Context, f *model.Fournisseur) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fournisseurRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Fournisseur, error) {
	var f model.Fournisseur
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	return &f, err
}

func (r *fournisseurRepo) FindByMatricule(ctx context.Context, matricule string) (*model.Fournisseur, error) {
	var f model.Fournisseur
	err := r.db.WithContext(ctx).Where("matricule_fiscal = ?", matricule).First(&f).Error
	return &f, err
}

func (r *fournisseurRepo) List(ctx context.Context) ([]model.Fournisseur, error) {
	var fs []model.Fournisseur
	err := r.db.WithContext(ctx).Where("actif = true").Order("raison_sociale ASC").Find(&fs).Error
	return fs, err
}

func (r *fournisseurRepo) Update(ctx context.Context, f *model.Fournisseur) error {
	return r.db.WithContext(ctx).Model(&model.Fournisseur{}).Where("id = ?", f.ID).
		Select("raison_sociale", "matricule_fiscal", "telephone", "email", "adresse", "actif").
		Updates(f).Error
}

func (r *fournisseurRepo) Desactiver(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Fournisseur{}).Where("id = ?", id).Update("actif", false).Error
}

// ── Clients ───────────────────────────────────────────────────────────────────

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, search string) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	Desactiver(ctx context.Context, id uuid.UUID) error

	CreateWebsiteTx(tx *gorm.DB, c *model.ClientWebsite) error
	ListWebsite(ctx context.Context) ([]model.ClientWebsite, error)
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clientRepo) List(ctx context.Context, search string) ([]model.Client, error) {
	q := r.db.WithContext(ctx).Where("actif = true")
	if search != "" {
		q = q.Where("nom ILIKE ?", "%"+search+"%")
	}
	var cs []model.Client
	err := q.Order("nom ASC").Find(&cs).Error
	return cs, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", c.ID).
		Select("nom", "matricule_fiscal", "telephone", "email", "adresse", "actif").
		Updates(c).Error
}

func (r *clientRepo) Desactiver(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Update("actif", false).Error
}

func (r *clientRepo) CreateWebsiteTx(tx *gorm.DB, c *model.ClientWebsite) error {
	return tx.Create(c).Error
}

func (r *clientRepo) ListWebsite(ctx context.Context) ([]model.ClientWebsite, error) {
	var cs []model.ClientWebsite
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&cs).Error
	return cs, err
}
