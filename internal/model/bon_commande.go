package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BonCommande is a purchase order placed with a supplier. Its lines reserve
// incoming stock through Article.QteVirtual; physical stock is untouched.
type BonCommande struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroCommande string          `gorm:"uniqueIndex;not null"`
	FournisseurID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	DateCommande   time.Time       `gorm:"not null"`
	Statut         string          `gorm:"not null;index"`
	RemiseType     string          `gorm:"not null;default:'percentage'"`
	Remise         decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	Totaux         `gorm:"embedded"`
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Fournisseur *Fournisseur       `gorm:"foreignKey:FournisseurID"`
	Lignes      []BonCommandeLigne `gorm:"foreignKey:BonCommandeID"`
}

func (BonCommande) TableName() string { return "bons_commande" }

// BonCommandeLigne is one article of a purchase order. QuantiteRecue is the
// part already imputed by receptions (only when reservation release is on).
type BonCommandeLigne struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BonCommandeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ArticleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantite      decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	QuantiteRecue decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	PrixUnitaire  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	TVA           decimal.Decimal `gorm:"column:tva;type:decimal(5,2);not null;default:0"`
	TauxFodec     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	Article *Article `gorm:"foreignKey:ArticleID"`
}

func (BonCommandeLigne) TableName() string { return "bon_commande_lignes" }

// Restant is the reserved quantity not yet received.
func (l BonCommandeLigne) Restant() decimal.Decimal {
	return l.Quantite.Sub(l.QuantiteRecue)
}
