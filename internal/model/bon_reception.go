package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BonReception records goods physically received from a supplier.
type BonReception struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroReception string     `gorm:"uniqueIndex;not null"`
	FournisseurID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	BonCommandeID   *uuid.UUID `gorm:"type:uuid;index"`
	DateReception   time.Time  `gorm:"not null"`
	Statut          string     `gorm:"not null"`
	Totaux          `gorm:"embedded"`
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Fournisseur *Fournisseur        `gorm:"foreignKey:FournisseurID"`
	BonCommande *BonCommande        `gorm:"foreignKey:BonCommandeID"`
	Lignes      []BonReceptionLigne `gorm:"foreignKey:BonReceptionID"`
}

func (BonReception) TableName() string { return "bons_reception" }

// BonReceptionLigne is one received article. QuantiteImputee is the part
// credited to the linked purchase order line.
type BonReceptionLigne struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BonReceptionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ArticleID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantite        decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	QuantiteImputee decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	PrixUnitaire    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	TVA             decimal.Decimal `gorm:"column:tva;type:decimal(5,2);not null;default:0"`
	Remise          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	Article *Article `gorm:"foreignKey:ArticleID"`
}

func (BonReceptionLigne) TableName() string { return "bon_reception_lignes" }
