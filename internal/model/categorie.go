package model

import (
	"time"

	"github.com/google/uuid"
)

// Categorie classifies articles. A categorie with a ParentID is a sous-catégorie.
type Categorie struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nom         string     `gorm:"uniqueIndex;not null"`
	Description *string
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Actif       bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Parent *Categorie `gorm:"foreignKey:ParentID"`
}

func (Categorie) TableName() string { return "categories" }
