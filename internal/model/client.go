package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a registered customer.
type Client struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nom             string    `gorm:"index;not null"`
	MatriculeFiscal *string
	Telephone       *string
	Email           *string
	Adresse         *string
	Actif           bool `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Client) TableName() string { return "clients" }

// ClientWebsite is an unregistered customer captured inline by a web order.
type ClientWebsite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nom       string    `gorm:"not null"`
	Telephone string    `gorm:"not null"`
	Adresse   string    `gorm:"not null"`
	Email     *string
	CreatedAt time.Time
}

func (ClientWebsite) TableName() string { return "clients_website" }
