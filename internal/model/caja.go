package model

import (
	"github.com/google/uuid"
)

// Caja is a physical point of sale. Cajas are administered outside this
// system; the backend only reads them.
// EsVariable marks registers whose single product is priced by the operator
// at confirmation time instead of from the catalog.
type Caja struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Detalle    string    `gorm:"not null"`
	EsVariable bool      `gorm:"not null;default:false"`
	ClubID     uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (Caja) TableName() string { return "cajas" }

// Permiso grants one usuario the right to operate one caja.
// Authorization is the existence of a row for (usuario, caja) — nothing more.
type Permiso struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Detalle   string
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;index"`
	CajaID    uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (Permiso) TableName() string { return "permisos" }
