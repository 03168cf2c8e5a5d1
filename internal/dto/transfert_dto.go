package dto

import "github.com/shopspring/decimal"

type TransfertItemRequest struct {
	ArticleID string          `json:"article_id" validate:"required,uuid"`
	Qte       decimal.Decimal `json:"qte"        validate:"required,gt=0"`
}

// TransfertRequest references each depot by id or by name; the id wins when
// both are given.
type TransfertRequest struct {
	DepotSourceID      *string                `json:"depot_source_id"      validate:"omitempty,uuid"`
	DepotSource        string                 `json:"depot_source"`
	DepotDestinationID *string                `json:"depot_destination_id" validate:"omitempty,uuid"`
	DepotDestination   string                 `json:"depot_destination"`
	DateTransfert      string                 `json:"date_transfert"       validate:"omitempty,datetime=2006-01-02"`
	Notes              *string                `json:"notes"`
	Items              []TransfertItemRequest `json:"items"                validate:"required,min=1,dive"`
}

type StatutTransfertRequest struct {
	Statut string `json:"statut" validate:"required,oneof='En cours' 'Terminé' 'Annulé'"`
}

type TransfertFilter struct {
	Statut  string `form:"statut"`
	DepotID string `form:"depot_id" validate:"omitempty,uuid"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type TransfertItemResponse struct {
	ID             string          `json:"id"`
	ArticleID      string          `json:"article_id"`
	Article        string          `json:"article,omitempty"`
	Qte            decimal.Decimal `json:"qte"`
	PrixUnitaireHT decimal.Decimal `json:"prix_unitaire_ht"`
	TVA            decimal.Decimal `json:"tva"`
	TotalHT        decimal.Decimal `json:"total_ht"`
	TotalTTC       decimal.Decimal `json:"total_ttc"`
}

type TransfertResponse struct {
	ID                 string                  `json:"id"`
	Numero             string                  `json:"numero"`
	DepotSourceID      string                  `json:"depot_source_id"`
	DepotSource        string                  `json:"depot_source"`
	DepotDestinationID string                  `json:"depot_destination_id"`
	DepotDestination   string                  `json:"depot_destination"`
	Statut             string                  `json:"statut"`
	TotalHT            decimal.Decimal         `json:"total_ht"`
	TotalTVA           decimal.Decimal         `json:"total_tva"`
	TotalTTC           decimal.Decimal         `json:"total_ttc"`
	DateTransfert      string                  `json:"date_transfert"`
	Notes              *string                 `json:"notes"`
	Items              []TransfertItemResponse `json:"items"`
}
