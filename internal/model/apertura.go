package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Apertura estados.
const (
	AperturaAbierta = "abierta"
	AperturaCerrada = "cerrada"
)

// Apertura is one open-to-close cycle of a caja. At most one apertura per
// caja may be "abierta" at any time; the storage layer backs this with a
// partial unique index on (caja_id) WHERE estado = 'abierta' (see
// infra.applySchemaPatches) in addition to the service-level pre-check.
//
// Close-time fields are nil while the apertura is open. TotalVentas is
// derived from the linked ventas and only persisted at close; while open it
// must always be recomputed.
type Apertura struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoCierre defaults to TotalVentas when the cashier closes without a
	// declared amount.
	MontoCierre   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalVentas   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Descuadre     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Observaciones *string
	OpenedAt      time.Time
	ClosedAt      *time.Time

	Ventas []Venta `gorm:"foreignKey:AperturaID"`
}

func (Apertura) TableName() string { return "aperturas" }
