package dto

import "github.com/shopspring/decimal"

type DepotRequest struct {
	Nom         string  `json:"nom"         validate:"required,min=2,max=100"`
	Description *string `json:"description"`
}

type DepotResponse struct {
	ID          string  `json:"id"`
	Nom         string  `json:"nom"`
	Description *string `json:"description"`
}

// AjusterStockDepotRequest applies a signed delta to one article in a depot
// (inventory count, initial stocking).
type AjusterStockDepotRequest struct {
	ArticleID string          `json:"article_id" validate:"required,uuid"`
	Delta     decimal.Decimal `json:"delta"      validate:"required"`
	Motif     string          `json:"motif"      validate:"max=255"`
}

type StockDepotResponse struct {
	ArticleID   string          `json:"article_id"`
	Reference   string          `json:"reference,omitempty"`
	Designation string          `json:"designation,omitempty"`
	DepotID     string          `json:"depot_id"`
	Depot       string          `json:"depot,omitempty"`
	Qte         decimal.Decimal `json:"qte"`
}

// DepotStockResponse is returned by GET /v1/depots/:id/stock.
type DepotStockResponse struct {
	DepotID string               `json:"depot_id"`
	Depot   string               `json:"depot"`
	Lignes  []StockDepotResponse `json:"lignes"`
}
