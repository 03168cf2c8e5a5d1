package dto

import "github.com/shopspring/decimal"

// ─── Shared DTOs ─────────────────────────────────────────────────────────────

// Page is the envelope of every paginated listing.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPage builds a Page and computes TotalPages.
func NewPage[T any](data []T, total int64, page, limit int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &Page[T]{Data: data, Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// DocumentFilter is bound from the query string of every document listing.
type DocumentFilter struct {
	Statut  string `form:"statut"`
	TiersID string `form:"tiers_id" validate:"omitempty,uuid"`
	Depuis  string `form:"depuis"   validate:"omitempty,datetime=2006-01-02"`
	Jusqua  string `form:"jusqua"   validate:"omitempty,datetime=2006-01-02"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// TotauxResponse mirrors model.Totaux.
type TotauxResponse struct {
	SousTotal   decimal.Decimal `json:"sous_total"`
	TotalRemise decimal.Decimal `json:"total_remise"`
	TotalFodec  decimal.Decimal `json:"total_fodec"`
	TotalTVA    decimal.Decimal `json:"total_tva"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NumeroResponse is returned by the prochain-numero endpoints.
type NumeroResponse struct {
	Numero string `json:"numero"`
}

// EnvoyerDocumentRequest asks for a document PDF to be mailed.
type EnvoyerDocumentRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// EnvoiResponse acknowledges an enqueued dispatch.
type EnvoiResponse struct {
	Message string `json:"message"`
}
