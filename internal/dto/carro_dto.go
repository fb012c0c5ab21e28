package dto

import (
	"github.com/shopspring/decimal"
)

// SeleccionRequest is one product picked in the selection view.
// Precio is only honored for variable-price cajas, where the operator types
// the unit price; fixed-catalog cajas always price from the resolver.
type SeleccionRequest struct {
	ProductoID int64            `json:"id_prod"  validate:"required"`
	Cantidad   int              `json:"cantidad" validate:"required,min=1"`
	Precio     *decimal.Decimal `json:"precio"   validate:"omitempty,gt=0"`
}

type StageCarroRequest struct {
	Selecciones []SeleccionRequest `json:"selecciones" validate:"required,min=1,dive"`
}

// CarroItem is a staged line with its price snapshotted at selection time.
// A catalog price change mid-transaction never alters an in-progress sale.
type CarroItem struct {
	ProductoID    int64           `json:"id_prod"`
	Codigo        string          `json:"codigo"`
	Nombre        string          `json:"nombre"`
	Precio        decimal.Decimal `json:"precio"`
	Cantidad      int             `json:"cantidad"`
	ListaPrecioID int             `json:"id_listaprecio"`
}

// Carro is the staged cart for one (session, caja) pair. Overwritten
// wholesale on every stage call.
type Carro struct {
	CajaID string          `json:"id_caja"`
	Items  []CarroItem     `json:"items"`
	Total  decimal.Decimal `json:"total"`
}
