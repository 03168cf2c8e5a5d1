package infra

import (
	"fmt"

	"gescom/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the postgres pool. Schema management is left to the
// caller: Migrate (SQL files) or AutoMigrate (development).
func NewDatabase(dsn string, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Categorie{},
		&model.Fournisseur{},
		&model.Client{},
		&model.ClientWebsite{},
		&model.Article{},
		&model.Depot{},
		&model.StockDepot{},
		&model.MouvementStock{},
		&model.BonCommande{},
		&model.BonCommandeLigne{},
		&model.BonReception{},
		&model.BonReceptionLigne{},
		&model.BonCommandeClient{},
		&model.BonCommandeClientLigne{},
		&model.BonLivraison{},
		&model.BonLivraisonLigne{},
		&model.Transfert{},
		&model.TransfertItem{},
	}
}

// AutoMigrate creates or updates the schema from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}
