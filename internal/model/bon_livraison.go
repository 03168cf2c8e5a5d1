package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BonLivraison records goods shipped to a client, optionally for a client order.
type BonLivraison struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroLivraison     string     `gorm:"uniqueIndex;not null"`
	ClientID            *uuid.UUID `gorm:"type:uuid;index"`
	ClientWebsiteID     *uuid.UUID `gorm:"type:uuid;index"`
	VendeurID           *uuid.UUID `gorm:"type:uuid;index"`
	BonCommandeClientID *uuid.UUID `gorm:"type:uuid;index"`
	DateLivraison       time.Time  `gorm:"not null"`
	Statut              string     `gorm:"not null;index"`
	Totaux              `gorm:"embedded"`
	Notes               *string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Client            *Client             `gorm:"foreignKey:ClientID"`
	ClientWebsite     *ClientWebsite      `gorm:"foreignKey:ClientWebsiteID"`
	BonCommandeClient *BonCommandeClient  `gorm:"foreignKey:BonCommandeClientID"`
	Lignes            []BonLivraisonLigne `gorm:"foreignKey:BonLivraisonID"`
}

func (BonLivraison) TableName() string { return "bons_livraison" }

// BonLivraisonLigne is one delivered article. QuantiteImputee is the part
// credited to the client order line when deliveries are synchronised.
type BonLivraisonLigne struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BonLivraisonID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ArticleID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantite        decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	QuantiteImputee decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	PrixUnitaire    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	TVA             decimal.Decimal `gorm:"column:tva;type:decimal(5,2);not null;default:0"`
	Remise          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	Article *Article `gorm:"foreignKey:ArticleID"`
}

func (BonLivraisonLigne) TableName() string { return "bon_livraison_lignes" }
