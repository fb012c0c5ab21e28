package dto

import "github.com/shopspring/decimal"

// ProductoResponse is a priced sellable product as exposed to a caja.
// Computed per request from the local catalog membership joined against the
// flex master store; never persisted.
type ProductoResponse struct {
	ProductoID int64           `json:"id_prod"`
	Codigo     string          `json:"id_producto"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Compuesto  bool            `json:"compuesto"`
	KitVirtual bool            `json:"kitvirtual"`
}

type CajaResponse struct {
	ID         string `json:"id_caja"`
	Detalle    string `json:"detalle_caja"`
	EsVariable bool   `json:"es_variable"`
}
