package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Facturacion estados — the electronic-receipt state machine per venta.
// no_aplica: the sale never requested a boleta.
// pendiente: flagged for the sync agent, not yet accepted by Factura X.
// emitida:   Factura X returned a document id (stored in IDFx).
// The only legal transition is pendiente → emitida; repository updates guard
// it with a WHERE clause so a concurrent agent run cannot double-apply.
const (
	FacturacionNoAplica  = "no_aplica"
	FacturacionPendiente = "pendiente"
	FacturacionEmitida   = "emitida"
)

// Correo estados — the receipt-email state machine per venta.
// pendiente → enviado on delivery; no_aplica when the sale has no cliente
// email (nothing to retry).
const (
	CorreoPendiente = "pendiente"
	CorreoEnviado   = "enviado"
	CorreoNoAplica  = "no_aplica"
)

// Venta is one completed transaction. The header and its detalles are created
// atomically at sale time; afterwards only the facturacion/correo state
// fields are mutated, by the side-effect steps and the sync agent.
type Venta struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AperturaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID  *uuid.UUID      `gorm:"type:uuid"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	FacturacionEstado string `gorm:"type:varchar(20);not null;default:'no_aplica'"`
	// CorrelativoFlex is the external invoicing sequence number. Zero means
	// the sale is never a sync-agent candidate.
	CorrelativoFlex int64   `gorm:"not null;default:0"`
	IDFx            *string `gorm:"type:varchar(64);column:id_fx"`
	CorreoEstado    string  `gorm:"type:varchar(20);not null;default:'pendiente'"`

	CreatedAt time.Time

	Cliente   *Cliente       `gorm:"foreignKey:ClienteID"`
	Detalles  []DetalleVenta `gorm:"foreignKey:VentaID"`
	MedioPago *MedioPago     `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// DetalleVenta is one line of a venta. Immutable after creation.
// PrecioUnitario snapshots the price the line was sold at — legacy rows
// imported from the old schema may carry zero here, in which case readers
// fall back to ListaPrecioID semantics of the old data.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     int64           `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ListaPrecioID  int             `gorm:"not null"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }

// MedioPago records the payment method of a venta, one row per venta.
// Voucher holds the card/transfer authorization number; empty for efectivo.
// Its insert is best-effort: a failure is logged, never rolled into the sale.
type MedioPago struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Metodo  string    `gorm:"type:varchar(20);not null"`
	Voucher string    `gorm:"type:varchar(12);not null;default:''"`
}

func (MedioPago) TableName() string { return "medios_pago" }
