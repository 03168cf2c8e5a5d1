package dto

import "github.com/shopspring/decimal"

type LigneLivraisonRequest struct {
	ArticleID    string           `json:"article_id"    validate:"required,uuid"`
	Quantite     decimal.Decimal  `json:"quantite"      validate:"required,gt=0"`
	PrixUnitaire *decimal.Decimal `json:"prix_unitaire" validate:"omitempty,gte=0"`
	TVA          *decimal.Decimal `json:"tva"           validate:"omitempty,gte=0,lte=100"`
	Remise       decimal.Decimal  `json:"remise"        validate:"gte=0,lte=100"`
}

// CreerLivraisonRequest: with BonCommandeClientID the client and vendeur come
// from the order, otherwise ClientID is required. Lines are always explicit.
type CreerLivraisonRequest struct {
	BonCommandeClientID *string                 `json:"bon_commande_client_id" validate:"omitempty,uuid"`
	ClientID            *string                 `json:"client_id"              validate:"omitempty,uuid"`
	VendeurID           *string                 `json:"vendeur_id"             validate:"omitempty,uuid"`
	DateLivraison       string                  `json:"date_livraison"         validate:"omitempty,datetime=2006-01-02"`
	Notes               *string                 `json:"notes"`
	Lignes              []LigneLivraisonRequest `json:"lignes"                 validate:"required,min=1,dive"`
}

type ModifierLivraisonRequest struct {
	DateLivraison string                  `json:"date_livraison" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string                 `json:"notes"`
	Lignes        []LigneLivraisonRequest `json:"lignes"         validate:"required,min=1,dive"`
}

type LigneLivraisonResponse struct {
	ID              string          `json:"id"`
	ArticleID       string          `json:"article_id"`
	Article         string          `json:"article,omitempty"`
	Quantite        decimal.Decimal `json:"quantite"`
	QuantiteImputee decimal.Decimal `json:"quantite_imputee"`
	PrixUnitaire    decimal.Decimal `json:"prix_unitaire"`
	TVA             decimal.Decimal `json:"tva"`
	Remise          decimal.Decimal `json:"remise"`
}

type LivraisonResponse struct {
	ID                  string                   `json:"id"`
	NumeroLivraison     string                   `json:"numero_livraison"`
	ClientID            *string                  `json:"client_id"`
	Client              string                   `json:"client,omitempty"`
	ClientWebsiteID     *string                  `json:"client_website_id"`
	VendeurID           *string                  `json:"vendeur_id"`
	BonCommandeClientID *string                  `json:"bon_commande_client_id"`
	NumeroCommande      string                   `json:"numero_commande,omitempty"`
	DateLivraison       string                   `json:"date_livraison"`
	Statut              string                   `json:"statut"`
	Totaux              TotauxResponse           `json:"totaux"`
	Notes               *string                  `json:"notes"`
	Lignes              []LigneLivraisonResponse `json:"lignes"`
}
