package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Depot is a physical stock location.
type Depot struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nom         string    `gorm:"uniqueIndex;not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Depot) TableName() string { return "depots" }

// StockDepot is the quantity of one article held in one depot. Rows are
// created lazily and removed once their quantity drops to zero or below.
type StockDepot struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticleID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_article_depot"`
	DepotID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_article_depot;index"`
	Qte       decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	UpdatedAt time.Time

	Article *Article `gorm:"foreignKey:ArticleID"`
	Depot   *Depot   `gorm:"foreignKey:DepotID"`
}

func (StockDepot) TableName() string { return "stock_depots" }
