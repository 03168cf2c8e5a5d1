package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mouvement types recorded in the stock journal.
const (
	MouvementCommandeFournisseur = "commande_fournisseur"
	MouvementReception           = "reception"
	MouvementCommandeClient      = "commande_client"
	MouvementLivraison           = "livraison"
	MouvementTransfert           = "transfert"
	MouvementAjustementDepot     = "ajustement_depot"
	MouvementSuppressionDepot    = "suppression_depot"
)

// MouvementStock journals every change applied to an article's quantity
// counters: the deltas and the resulting values.
type MouvementStock struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticleID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type             string          `gorm:"not null;index"`
	DeltaQte         decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	DeltaQtePhysique decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	DeltaQteVirtual  decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	QteApres         decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	QtePhysiqueApres decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	QteVirtualApres  decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Motif            string
	ReferenceID      *uuid.UUID `gorm:"type:uuid;index"` // document the movement belongs to
	CreatedAt        time.Time

	Article *Article `gorm:"foreignKey:ArticleID"`
}

// TableName overrides GORM's default pluralization (mouvement_stocks → mouvements_stock).
func (MouvementStock) TableName() string { return "mouvements_stock" }
