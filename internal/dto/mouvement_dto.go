package dto

import "github.com/shopspring/decimal"

type MouvementFilter struct {
	ArticleID   string `form:"article_id"   validate:"omitempty,uuid"`
	ReferenceID string `form:"reference_id" validate:"omitempty,uuid"`
	Type        string `form:"type"`
	Depuis      string `form:"depuis"       validate:"omitempty,datetime=2006-01-02"`
	Jusqua      string `form:"jusqua"       validate:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page,default=1"    validate:"min=1"`
	Limit       int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type MouvementResponse struct {
	ID               string          `json:"id"`
	ArticleID        string          `json:"article_id"`
	Article          string          `json:"article,omitempty"`
	Type             string          `json:"type"`
	DeltaQte         decimal.Decimal `json:"delta_qte"`
	DeltaQtePhysique decimal.Decimal `json:"delta_qte_physique"`
	DeltaQteVirtual  decimal.Decimal `json:"delta_qte_virtual"`
	QteApres         decimal.Decimal `json:"qte_apres"`
	QtePhysiqueApres decimal.Decimal `json:"qte_physique_apres"`
	QteVirtualApres  decimal.Decimal `json:"qte_virtual_apres"`
	Motif            string          `json:"motif"`
	ReferenceID      *string         `json:"reference_id"`
	CreatedAt        string          `json:"created_at"`
}
