package dto

import "github.com/shopspring/decimal"

type LigneCommandeClientRequest struct {
	ArticleID      string           `json:"article_id"      validate:"required,uuid"`
	Quantite       decimal.Decimal  `json:"quantite"        validate:"required,gt=0"`
	QuantiteLivree decimal.Decimal  `json:"quantite_livree" validate:"gte=0"`
	PrixUnitaire   *decimal.Decimal `json:"prix_unitaire"   validate:"required,gte=0"`
	TVA            *decimal.Decimal `json:"tva"             validate:"omitempty,gte=0,lte=100"`
	Remise         decimal.Decimal  `json:"remise"          validate:"gte=0,lte=100"`
}

// CreerCommandeClientRequest needs either ClientID or ClientWebsiteInfo.
type CreerCommandeClientRequest struct {
	ClientID          *string                      `json:"client_id"           validate:"omitempty,uuid"`
	ClientWebsiteInfo *ClientWebsiteInfo           `json:"client_website_info" validate:"omitempty"`
	VendeurID         *string                      `json:"vendeur_id"          validate:"omitempty,uuid"`
	DateCommande      string                       `json:"date_commande"       validate:"omitempty,datetime=2006-01-02"`
	ModePaiement      *string                      `json:"mode_paiement"`
	MontantPaye       decimal.Decimal              `json:"montant_paye"        validate:"gte=0"`
	Notes             *string                      `json:"notes"`
	Lignes            []LigneCommandeClientRequest `json:"lignes"              validate:"required,min=1,dive"`
}

// ModifierCommandeClientRequest: a nil Lignes leaves the lines untouched
// (header-only edit, allowed even once a delivery note exists).
type ModifierCommandeClientRequest struct {
	VendeurID    *string                      `json:"vendeur_id"    validate:"omitempty,uuid"`
	DateCommande string                       `json:"date_commande" validate:"omitempty,datetime=2006-01-02"`
	ModePaiement *string                      `json:"mode_paiement"`
	MontantPaye  *decimal.Decimal             `json:"montant_paye"  validate:"omitempty,gte=0"`
	Notes        *string                      `json:"notes"`
	Lignes       []LigneCommandeClientRequest `json:"lignes"        validate:"omitempty,min=1,dive"`
}

type LigneCommandeClientResponse struct {
	ID             string          `json:"id"`
	ArticleID      string          `json:"article_id"`
	Article        string          `json:"article,omitempty"`
	Quantite       decimal.Decimal `json:"quantite"`
	QuantiteLivree decimal.Decimal `json:"quantite_livree"`
	PrixUnitaire   decimal.Decimal `json:"prix_unitaire"`
	TVA            decimal.Decimal `json:"tva"`
	Remise         decimal.Decimal `json:"remise"`
}

type CommandeClientResponse struct {
	ID              string                        `json:"id"`
	NumeroCommande  string                        `json:"numero_commande"`
	ClientID        *string                       `json:"client_id"`
	Client          string                        `json:"client,omitempty"`
	ClientWebsiteID *string                       `json:"client_website_id"`
	ClientWebsite   *ClientWebsiteResponse        `json:"client_website,omitempty"`
	VendeurID       *string                       `json:"vendeur_id"`
	DateCommande    string                        `json:"date_commande"`
	Statut          string                        `json:"statut"`
	Totaux          TotauxResponse                `json:"totaux"`
	ModePaiement    *string                       `json:"mode_paiement"`
	MontantPaye     decimal.Decimal               `json:"montant_paye"`
	ResteAPayer     decimal.Decimal               `json:"reste_a_payer"`
	Notes           *string                       `json:"notes"`
	Lignes          []LigneCommandeClientResponse `json:"lignes"`
}
