package model

import "github.com/shopspring/decimal"

// Purchase order statuses.
const (
	StatutBrouillon         = "Brouillon"
	StatutConfirme          = "Confirme"
	StatutAnnule            = "Annule"
	StatutPartiellementRecu = "Partiellement Recu"
	StatutRecu              = "Recu"
)

// Client order statuses (Brouillon, Confirme and Annule are shared).
const (
	StatutLivre              = "Livre"
	StatutPartiellementLivre = "Partiellement Livre"
)

// Delivery note status.
const StatutLivraisonLivree = "Livré"

// Transfer statuses.
const (
	TransfertEnCours = "En cours"
	TransfertTermine = "Terminé"
	TransfertAnnule  = "Annulé"
)

// Discount kinds applied on a purchase order total.
const (
	RemisePourcentage = "percentage"
	RemiseFixe        = "fixed"
)

// Totaux groups the amounts carried by every commercial document header.
type Totaux struct {
	SousTotal   decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	TotalRemise decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	TotalFodec  decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	TotalTVA    decimal.Decimal `gorm:"column:total_tva;type:decimal(14,3);not null;default:0"`
	GrandTotal  decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
}
