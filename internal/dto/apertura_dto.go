package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirAperturaRequest struct {
	CajaID       string          `json:"id_caja"       validate:"required,uuid"`
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarAperturaRequest struct {
	// MontoCierre omitted = default to the computed sales total.
	MontoCierre   *decimal.Decimal `json:"monto_cierre" validate:"omitempty,min=0"`
	Observaciones *string          `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AperturaResponse struct {
	ID           string           `json:"id_apertura"`
	CajaID       string           `json:"id_caja"`
	UsuarioID    string           `json:"id_usuario"`
	Estado       string           `json:"estado"`
	MontoInicial decimal.Decimal  `json:"monto_inicial"`
	MontoCierre  *decimal.Decimal `json:"monto_cierre,omitempty"`
	TotalVentas  *decimal.Decimal `json:"total_ventas,omitempty"`
	Descuadre    *decimal.Decimal `json:"descuadre,omitempty"`
	OpenedAt     string           `json:"fecha_inicio"`
	ClosedAt     *string          `json:"fecha_termino,omitempty"`
}

type CierreResponse struct {
	AperturaID  string          `json:"id_apertura"`
	TotalVentas decimal.Decimal `json:"total_ventas"`
	MontoCierre decimal.Decimal `json:"monto_cierre"`
	Descuadre   decimal.Decimal `json:"descuadre"`
	Estado      string          `json:"estado"`
	// Degradado marks the fallback path: the apertura was closed but the
	// float/descuadre bookkeeping could not be persisted.
	Degradado bool `json:"degradado,omitempty"`
}

type TotalAperturaResponse struct {
	AperturaID  string          `json:"id_apertura"`
	TotalVentas decimal.Decimal `json:"total_ventas"`
}
