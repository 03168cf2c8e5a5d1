package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BonCommandeClient is a client sales order tracked with partial deliveries.
// Exactly one of ClientID / ClientWebsiteID is set.
type BonCommandeClient struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroCommande  string          `gorm:"uniqueIndex;not null"`
	ClientID        *uuid.UUID      `gorm:"type:uuid;index"`
	ClientWebsiteID *uuid.UUID      `gorm:"type:uuid;index"`
	VendeurID       *uuid.UUID      `gorm:"type:uuid;index"`
	DateCommande    time.Time       `gorm:"not null"`
	Statut          string          `gorm:"not null;index"`
	Totaux          `gorm:"embedded"`
	ModePaiement    *string
	MontantPaye     decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Client        *Client                  `gorm:"foreignKey:ClientID"`
	ClientWebsite *ClientWebsite           `gorm:"foreignKey:ClientWebsiteID"`
	Lignes        []BonCommandeClientLigne `gorm:"foreignKey:BonCommandeClientID"`
}

func (BonCommandeClient) TableName() string { return "bons_commande_client" }

// BonCommandeClientLigne carries the ordered quantity and the part delivered so far.
type BonCommandeClientLigne struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BonCommandeClientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ArticleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantite            decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	QuantiteLivree      decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	PrixUnitaire        decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	TVA                 decimal.Decimal `gorm:"column:tva;type:decimal(5,2);not null;default:0"`
	Remise              decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	Article *Article `gorm:"foreignKey:ArticleID"`
}

func (BonCommandeClientLigne) TableName() string { return "bon_commande_client_lignes" }
