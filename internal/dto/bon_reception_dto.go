package dto

import "github.com/shopspring/decimal"

type LigneBonReceptionRequest struct {
	ArticleID    string           `json:"article_id"    validate:"required,uuid"`
	Quantite     decimal.Decimal  `json:"quantite"      validate:"required,gt=0"`
	PrixUnitaire *decimal.Decimal `json:"prix_unitaire" validate:"required,gte=0"`
	TVA          *decimal.Decimal `json:"tva"           validate:"omitempty,gte=0,lte=100"`
	Remise       decimal.Decimal  `json:"remise"        validate:"gte=0,lte=100"`
}

// BonReceptionRequest is used for create and update; the status is always "Recu".
type BonReceptionRequest struct {
	FournisseurID string                     `json:"fournisseur_id"  validate:"required,uuid"`
	BonCommandeID *string                    `json:"bon_commande_id" validate:"omitempty,uuid"`
	DateReception string                     `json:"date_reception"  validate:"omitempty,datetime=2006-01-02"`
	Notes         *string                    `json:"notes"`
	Lignes        []LigneBonReceptionRequest `json:"lignes"          validate:"required,min=1,dive"`
}

type LigneBonReceptionResponse struct {
	ID              string          `json:"id"`
	ArticleID       string          `json:"article_id"`
	Article         string          `json:"article,omitempty"`
	Quantite        decimal.Decimal `json:"quantite"`
	QuantiteImputee decimal.Decimal `json:"quantite_imputee"`
	PrixUnitaire    decimal.Decimal `json:"prix_unitaire"`
	TVA             decimal.Decimal `json:"tva"`
	Remise          decimal.Decimal `json:"remise"`
}

type BonReceptionResponse struct {
	ID              string                      `json:"id"`
	NumeroReception string                      `json:"numero_reception"`
	FournisseurID   string                      `json:"fournisseur_id"`
	Fournisseur     string                      `json:"fournisseur,omitempty"`
	BonCommandeID   *string                     `json:"bon_commande_id"`
	NumeroCommande  string                      `json:"numero_commande,omitempty"`
	DateReception   string                      `json:"date_reception"`
	Statut          string                      `json:"statut"`
	Totaux          TotauxResponse              `json:"totaux"`
	Notes           *string                     `json:"notes"`
	Lignes          []LigneBonReceptionResponse `json:"lignes"`
}
