package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is a lightweight customer record keyed by email. Sales without
// customer data reference no cliente at all (anonymous sales are allowed);
// repeated sales to the same email reuse the existing row.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string
	Apellido  string
	Email     *string `gorm:"uniqueIndex"`
	Telefono  *string
	CreatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }
