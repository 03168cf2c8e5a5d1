package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Article is a stock-keeping unit with pricing and three quantity counters.
// Qte is the global total (a cache of the depot rows when the article is
// depot-tracked), QtePhysique the physical on-hand quantity moved by
// receptions, client orders and deliveries, QteVirtual the quantity reserved
// by open purchase orders. Qte and QtePhysique are allowed to diverge and
// QteVirtual may go negative; none of them is clamped.
type Article struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference       string          `gorm:"uniqueIndex;not null"`
	Designation     string          `gorm:"index;not null"`
	Description     *string
	PrixAchatHT     decimal.Decimal `gorm:"column:prix_achat_ht;type:decimal(12,3);not null;default:0"`
	PrixVenteHT     decimal.Decimal `gorm:"column:prix_vente_ht;type:decimal(12,3);not null;default:0"`
	TVA             decimal.Decimal `gorm:"column:tva;type:decimal(5,2);not null;default:0"`
	TauxFodec       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Qte             decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	QtePhysique     decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	QteVirtual      decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	CategorieID     *uuid.UUID      `gorm:"type:uuid;index"`
	SousCategorieID *uuid.UUID      `gorm:"type:uuid;index"`
	FournisseurID   *uuid.UUID      `gorm:"type:uuid;index"`
	Actif           bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Categorie     *Categorie   `gorm:"foreignKey:CategorieID"`
	SousCategorie *Categorie   `gorm:"foreignKey:SousCategorieID"`
	Fournisseur   *Fournisseur `gorm:"foreignKey:FournisseurID"`
}
