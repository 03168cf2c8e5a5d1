package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LigneBonCommandeRequest: TVA and TauxFodec default to the article's rates.
type LigneBonCommandeRequest struct {
	ArticleID    string           `json:"article_id"    validate:"required,uuid"`
	Quantite     decimal.Decimal  `json:"quantite"      validate:"required,gt=0"`
	PrixUnitaire *decimal.Decimal `json:"prix_unitaire" validate:"required,gte=0"`
	TVA          *decimal.Decimal `json:"tva"           validate:"omitempty,gte=0,lte=100"`
	TauxFodec    *decimal.Decimal `json:"taux_fodec"    validate:"omitempty,gte=0,lte=100"`
}

// BonCommandeRequest is used for create and update. There is no status field:
// the status is computed by the service.
type BonCommandeRequest struct {
	FournisseurID string                    `json:"fournisseur_id" validate:"required,uuid"`
	DateCommande  string                    `json:"date_commande"  validate:"omitempty,datetime=2006-01-02"`
	RemiseType    string                    `json:"remise_type"    validate:"omitempty,oneof=percentage fixed"`
	Remise        decimal.Decimal           `json:"remise"         validate:"gte=0"`
	Notes         *string                   `json:"notes"`
	Lignes        []LigneBonCommandeRequest `json:"lignes"         validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LigneBonCommandeResponse struct {
	ID            string          `json:"id"`
	ArticleID     string          `json:"article_id"`
	Article       string          `json:"article,omitempty"`
	Quantite      decimal.Decimal `json:"quantite"`
	QuantiteRecue decimal.Decimal `json:"quantite_recue"`
	PrixUnitaire  decimal.Decimal `json:"prix_unitaire"`
	TVA           decimal.Decimal `json:"tva"`
	TauxFodec     decimal.Decimal `json:"taux_fodec"`
}

type BonCommandeResponse struct {
	ID             string                     `json:"id"`
	NumeroCommande string                     `json:"numero_commande"`
	FournisseurID  string                     `json:"fournisseur_id"`
	Fournisseur    string                     `json:"fournisseur,omitempty"`
	DateCommande   string                     `json:"date_commande"`
	Statut         string                     `json:"statut"`
	RemiseType     string                     `json:"remise_type"`
	Remise         decimal.Decimal            `json:"remise"`
	Totaux         TotauxResponse             `json:"totaux"`
	Notes          *string                    `json:"notes"`
	Lignes         []LigneBonCommandeResponse `json:"lignes"`
}
