package service

import "errors"

// Domain errors surfaced to handlers. Precondition failures mutate nothing.
var (
	ErrCredenciales       = errors.New("credenciales invalidas")
	ErrSinPermiso         = errors.New("sin permiso para operar esta caja")
	ErrCajaNoEncontrada   = errors.New("caja no encontrada")
	ErrAperturaYaAbierta  = errors.New("la caja ya tiene una apertura abierta")
	ErrAperturaNoAbierta  = errors.New("no hay una apertura abierta para esta caja")
	ErrAperturaCerrada    = errors.New("la apertura ya está cerrada")
	ErrAperturaNoExiste   = errors.New("apertura no encontrada")
	ErrCarroVacio         = errors.New("el carro está vacío")
	ErrProductoNoVendible = errors.New("producto no disponible en esta caja")
	ErrPrecioRequerido    = errors.New("esta caja requiere precio ingresado por el operador")
	ErrVoucherRequerido   = errors.New("voucher es obligatorio para este medio de pago")
	ErrVoucherInvalido    = errors.New("voucher debe ser numérico de hasta 12 dígitos")
)
