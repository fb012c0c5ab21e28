package model

import "github.com/google/uuid"

// ProductoLocal maps a local catalog id to the external master-catalog code.
// The sellable product itself (name, price, flags) is never persisted
// locally — it is resolved per request against the flex master store.
type ProductoLocal struct {
	ID     int64  `gorm:"primaryKey"`
	Codigo string `gorm:"not null;index"`
}

func (ProductoLocal) TableName() string { return "productos_locales" }

// CatalogoCaja links a local product to a caja (catalog membership).
type CatalogoCaja struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID int64     `gorm:"not null;index"`
	CajaID     uuid.UUID `gorm:"type:uuid;not null;index"`
}

func (CatalogoCaja) TableName() string { return "catalogo_cajas" }
