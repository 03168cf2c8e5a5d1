package model

import (
	"time"

	"github.com/google/uuid"
)

// Fournisseur represents a supplier with commercial data.
type Fournisseur struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RaisonSociale   string    `gorm:"not null"`
	MatriculeFiscal string    `gorm:"uniqueIndex;not null"`
	Telephone       *string
	Email           *string
	Adresse         *string
	Actif           bool `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Fournisseur) TableName() string { return "fournisseurs" }
