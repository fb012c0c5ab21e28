package dto

import "github.com/shopspring/decimal"

type ClienteRequest struct {
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Email    string `json:"correo"   validate:"omitempty,email"`
	Telefono string `json:"telefono"`
}

type PagoRequest struct {
	Metodo string `json:"metodo"  validate:"required,oneof=efectivo debito credito transferencia"`
	// Voucher is mandatory for debito/credito (all digits, max 12);
	// auto-generated for transferencia; ignored for efectivo.
	Voucher string `json:"voucher" validate:"omitempty,max=12"`
}

type RegistrarVentaRequest struct {
	CajaID  string          `json:"id_caja" validate:"required,uuid"`
	Pago    PagoRequest     `json:"pago"    validate:"required"`
	Cliente *ClienteRequest `json:"cliente"`
	// GenerarBoleta flags the sale for the deferred Factura X sync agent.
	GenerarBoleta bool `json:"generar_boleta"`
}

type ItemVentaResponse struct {
	ProductoID     int64           `json:"id_prod"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
}

type VentaResponse struct {
	ID                string              `json:"id_venta"`
	AperturaID        string              `json:"id_apertura"`
	Total             decimal.Decimal     `json:"total"`
	Items             []ItemVentaResponse `json:"items"`
	Metodo            string              `json:"metodo"`
	Voucher           string              `json:"voucher,omitempty"`
	FacturacionEstado string              `json:"facturacion_estado"`
	CorreoEstado      string              `json:"correo_estado"`
	CreatedAt         string              `json:"fecha"`
	// Advertencias surfaces non-fatal side-effect failures (mediopago,
	// correo) without voiding the sale.
	Advertencias []string `json:"advertencias,omitempty"`
}
