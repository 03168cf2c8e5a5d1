package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreerArticleRequest struct {
	Reference       string          `json:"reference"         validate:"required,min=1,max=60"`
	Designation     string          `json:"designation"       validate:"required,min=2,max=200"`
	Description     *string         `json:"description"`
	PrixAchatHT     decimal.Decimal `json:"prix_achat_ht"     validate:"gte=0"`
	PrixVenteHT     decimal.Decimal `json:"prix_vente_ht"     validate:"gte=0"`
	TVA             decimal.Decimal `json:"tva"               validate:"gte=0,lte=100"`
	TauxFodec       decimal.Decimal `json:"taux_fodec"        validate:"gte=0,lte=100"`
	CategorieID     *string         `json:"categorie_id"      validate:"omitempty,uuid"`
	SousCategorieID *string         `json:"sous_categorie_id" validate:"omitempty,uuid"`
	FournisseurID   *string         `json:"fournisseur_id"    validate:"omitempty,uuid"`
}

// ModifierArticleRequest never carries quantities: stock only moves through documents.
type ModifierArticleRequest struct {
	Reference       *string          `json:"reference"         validate:"omitempty,min=1,max=60"`
	Designation     *string          `json:"designation"       validate:"omitempty,min=2,max=200"`
	Description     *string          `json:"description"`
	PrixAchatHT     *decimal.Decimal `json:"prix_achat_ht"     validate:"omitempty,gte=0"`
	PrixVenteHT     *decimal.Decimal `json:"prix_vente_ht"     validate:"omitempty,gte=0"`
	TVA             *decimal.Decimal `json:"tva"               validate:"omitempty,gte=0,lte=100"`
	TauxFodec       *decimal.Decimal `json:"taux_fodec"        validate:"omitempty,gte=0,lte=100"`
	CategorieID     *string          `json:"categorie_id"      validate:"omitempty,uuid"`
	SousCategorieID *string          `json:"sous_categorie_id" validate:"omitempty,uuid"`
	FournisseurID   *string          `json:"fournisseur_id"    validate:"omitempty,uuid"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ArticleFilter struct {
	Search      string `form:"search"`
	CategorieID string `form:"categorie_id" validate:"omitempty,uuid"`
	Actif       string `form:"actif"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ArticleResponse struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	Designation     string          `json:"designation"`
	Description     *string         `json:"description"`
	PrixAchatHT     decimal.Decimal `json:"prix_achat_ht"`
	PrixVenteHT     decimal.Decimal `json:"prix_vente_ht"`
	TVA             decimal.Decimal `json:"tva"`
	TauxFodec       decimal.Decimal `json:"taux_fodec"`
	Qte             decimal.Decimal `json:"qte"`
	QtePhysique     decimal.Decimal `json:"qte_physique"`
	QteVirtual      decimal.Decimal `json:"qte_virtual"`
	CategorieID     *string         `json:"categorie_id"`
	Categorie       *string         `json:"categorie,omitempty"`
	SousCategorieID *string         `json:"sous_categorie_id"`
	FournisseurID   *string         `json:"fournisseur_id"`
	Fournisseur     *string         `json:"fournisseur,omitempty"`
	Actif           bool            `json:"actif"`
}

// ArticleStockResponse is returned by GET /v1/articles/:id/stock.
type ArticleStockResponse struct {
	ArticleID   string               `json:"article_id"`
	Reference   string               `json:"reference"`
	Designation string               `json:"designation"`
	Qte         decimal.Decimal      `json:"qte"`
	QtePhysique decimal.Decimal      `json:"qte_physique"`
	QteVirtual  decimal.Decimal      `json:"qte_virtual"`
	TotalDepots decimal.Decimal      `json:"total_depots"`
	Depots      []StockDepotResponse `json:"depots"`
}
