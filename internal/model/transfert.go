package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfert moves article quantities between two depots. The depot ids are the
// relation; DepotSource / DepotDestination keep the names as display labels.
type Transfert struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero             string          `gorm:"uniqueIndex;not null"`
	DepotSourceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	DepotDestinationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	DepotSource        string          `gorm:"not null"`
	DepotDestination   string          `gorm:"not null"`
	Statut             string          `gorm:"not null;index"`
	TotalHT            decimal.Decimal `gorm:"column:total_ht;type:decimal(14,3);not null;default:0"`
	TotalTVA           decimal.Decimal `gorm:"column:total_tva;type:decimal(14,3);not null;default:0"`
	TotalTTC           decimal.Decimal `gorm:"column:total_ttc;type:decimal(14,3);not null;default:0"`
	DateTransfert      time.Time       `gorm:"not null"`
	Notes              *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Items []TransfertItem `gorm:"foreignKey:TransfertID"`

	// A depot stays while any transfer, cancelled ones included, names it.
	Source      *Depot `gorm:"foreignKey:DepotSourceID;constraint:OnDelete:RESTRICT"`
	Destination *Depot `gorm:"foreignKey:DepotDestinationID;constraint:OnDelete:RESTRICT"`
}

func (Transfert) TableName() string { return "transferts" }

// TransfertItem is one article moved, with a pricing snapshot taken at write time.
type TransfertItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransfertID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ArticleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Qte            decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	PrixUnitaireHT decimal.Decimal `gorm:"column:prix_unitaire_ht;type:decimal(12,3);not null;default:0"`
	TVA            decimal.Decimal `gorm:"column:tva;type:decimal(5,2);not null;default:0"`
	TotalHT        decimal.Decimal `gorm:"column:total_ht;type:decimal(14,3);not null;default:0"`
	TotalTTC       decimal.Decimal `gorm:"column:total_ttc;type:decimal(14,3);not null;default:0"`

	Article *Article `gorm:"foreignKey:ArticleID"`
}

func (TransfertItem) TableName() string { return "transfert_items" }
