package service

import (
	"context"
	"fmt"
	"time"

	"clubpos/internal/dto"
	"clubpos/internal/infra"
	"clubpos/internal/model"
	"clubpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Mailer sends one message with an optional PDF attachment.
type Mailer interface {
	Send(to, subject, htmlBody string, pdf []byte, filename string) error
}

type VentaService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, token string, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
}

type ventaService struct {
	repo          repository.VentaRepository
	aperturaRepo  repository.AperturaRepository
	clienteRepo   repository.ClienteRepository
	medioPagoRepo repository.MedioPagoRepository
	cajas         CajaService
	carro         CarroService
	mailer        Mailer
	log           zerolog.Logger
}

func NewVentaService(
	repo repository.VentaRepository,
	aperturaRepo repository.AperturaRepository,
	clienteRepo repository.ClienteRepository,
	medioPagoRepo repository.MedioPagoRepository,
	cajas CajaService,
	carro CarroService,
	mailer Mailer,
	log zerolog.Logger,
) VentaService {
	return &ventaService{
		repo:          repo,
		aperturaRepo:  aperturaRepo,
		clienteRepo:   clienteRepo,
		medioPagoRepo: medioPagoRepo,
		cajas:         cajas,
		carro:         carro,
		mailer:        mailer,
		log:           log,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Preconditions checked in order, mutating nothing on failure:
//  1. permiso for the caja
//  2. an open apertura on the caja
//  3. a non-empty staged cart
//  4. a valid voucher for the payment method
//
// Then one transaction writes header + detalles (+ cliente when new). Every
// step after commit is best-effort: a mediopago or email failure downgrades
// to a warning on the response, never voids the sale.

func (s *ventaService) Registrar(ctx context.Context, usuarioID uuid.UUID, token string, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, ErrCajaNoEncontrada
	}
	if err := s.cajas.VerificarPermiso(ctx, usuarioID, cajaID); err != nil {
		return nil, err
	}

	apertura, err := s.aperturaRepo.FindAbiertaPorCaja(ctx, cajaID)
	if err != nil {
		return nil, ErrAperturaNoAbierta
	}

	carro, err := s.carro.Restaurar(ctx, usuarioID, token, cajaID)
	if err != nil {
		return nil, err
	}
	if carro == nil || len(carro.Items) == 0 {
		return nil, ErrCarroVacio
	}

	voucher, err := validarVoucher(req.Pago.Metodo, req.Pago.Voucher)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range carro.Items {
		total = total.Add(item.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))))
	}

	clienteEmail := ""
	if req.Cliente != nil {
		clienteEmail = req.Cliente.Email
	}

	facturacion := model.FacturacionNoAplica
	if req.GenerarBoleta {
		facturacion = model.FacturacionPendiente
	}
	correo := model.CorreoNoAplica
	if clienteEmail != "" {
		correo = model.CorreoPendiente
	}

	var venta model.Venta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		clienteID, err := s.resolverCliente(ctx, tx, req.Cliente)
		if err != nil {
			return err
		}

		var correlativo int64
		if req.GenerarBoleta {
			correlativo, err = s.repo.NextCorrelativoFlex(ctx, tx)
			if err != nil {
				return fmt.Errorf("correlativo flex: %w", err)
			}
		}

		venta = model.Venta{
			AperturaID:        apertura.ID,
			ClienteID:         clienteID,
			Total:             total,
			FacturacionEstado: facturacion,
			CorrelativoFlex:   correlativo,
			CorreoEstado:      correo,
			CreatedAt:         time.Now(),
		}
		for _, item := range carro.Items {
			venta.Detalles = append(venta.Detalles, model.DetalleVenta{
				ProductoID:     item.ProductoID,
				Cantidad:       item.Cantidad,
				PrecioUnitario: item.Precio,
				ListaPrecioID:  item.ListaPrecioID,
			})
		}
		return s.repo.Create(ctx, tx, &venta)
	})
	if txErr != nil {
		return nil, txErr
	}

	var advertencias []string

	// Best-effort side effects from here on. The sale stands regardless.
	if err := s.medioPagoRepo.Create(ctx, &model.MedioPago{
		VentaID: venta.ID,
		Metodo:  req.Pago.Metodo,
		Voucher: voucher,
	}); err != nil {
		s.log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("mediopago insert failed")
		advertencias = append(advertencias, "el medio de pago no pudo registrarse")
	}

	// Courtesy receipt for non-boleta sales; boleta sales are emailed by the
	// sync agent with the official document attached.
	if clienteEmail != "" && !req.GenerarBoleta {
		if err := s.enviarResumen(ctx, &venta, carro, clienteEmail); err != nil {
			s.log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("receipt email failed")
			advertencias = append(advertencias, "el comprobante no pudo enviarse por correo")
		}
	}

	if err := s.carro.Limpiar(ctx, token, cajaID); err != nil {
		s.log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("cart cleanup failed")
		advertencias = append(advertencias, "el carro no pudo limpiarse")
	}

	s.log.Info().
		Str("venta_id", venta.ID.String()).
		Str("apertura_id", apertura.ID.String()).
		Str("total", total.String()).
		Bool("boleta", req.GenerarBoleta).
		Msg("venta registrada")

	items := make([]dto.ItemVentaResponse, 0, len(carro.Items))
	for _, item := range carro.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     item.ProductoID,
			Nombre:         item.Nombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.Precio,
		})
	}
	return &dto.VentaResponse{
		ID:                venta.ID.String(),
		AperturaID:        apertura.ID.String(),
		Total:             total,
		Items:             items,
		Metodo:            req.Pago.Metodo,
		Voucher:           voucher,
		FacturacionEstado: venta.FacturacionEstado,
		CorreoEstado:      venta.CorreoEstado,
		CreatedAt:         venta.CreatedAt.Format(time.RFC3339),
		Advertencias:      advertencias,
	}, nil
}

// resolverCliente reuses the cliente row matching the email, creating one
// inside the sale transaction otherwise. Sales without any customer data stay
// anonymous.
func (s *ventaService) resolverCliente(ctx context.Context, tx *gorm.DB, req *dto.ClienteRequest) (*uuid.UUID, error) {
	if req == nil || (req.Nombre == "" && req.Apellido == "" && req.Email == "" && req.Telefono == "") {
		return nil, nil
	}

	if req.Email != "" {
		if existing, err := s.clienteRepo.FindByEmail(ctx, req.Email); err == nil {
			return &existing.ID, nil
		}
	}

	cliente := &model.Cliente{
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
	}
	if req.Email != "" {
		cliente.Email = &req.Email
	}
	if req.Telefono != "" {
		cliente.Telefono = &req.Telefono
	}
	if err := s.clienteRepo.Create(ctx, tx, cliente); err != nil {
		return nil, fmt.Errorf("crear cliente: %w", err)
	}
	return &cliente.ID, nil
}

func (s *ventaService) enviarResumen(ctx context.Context, venta *model.Venta, carro *dto.Carro, email string) error {
	if s.mailer == nil {
		return nil
	}
	nombres := make(map[int64]string, len(carro.Items))
	for _, item := range carro.Items {
		nombres[item.ProductoID] = item.Nombre
	}
	pdf, err := infra.GenerateResumenPDF(venta, nombres)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("<p>Gracias por su compra.</p><p>Total: $%s</p>", venta.Total.StringFixed(0))
	if err := s.mailer.Send(email, "Comprobante de compra", body, pdf, "comprobante.pdf"); err != nil {
		return err
	}
	if err := s.repo.SetCorreoEstado(ctx, venta.ID, model.CorreoEnviado); err != nil {
		return err
	}
	venta.CorreoEstado = model.CorreoEnviado
	return nil
}

// validarVoucher applies the per-method voucher rules and returns the value
// to persist: card methods demand an all-digit number of at most 12 digits,
// transferencia auto-fills a YYYYMMDDHHMM stamp, efectivo carries none.
func validarVoucher(metodo, voucher string) (string, error) {
	switch metodo {
	case "efectivo":
		return "", nil
	case "transferencia":
		if voucher == "" {
			return time.Now().Format("200601021504"), nil
		}
		if !esNumerico(voucher) || len(voucher) > 12 {
			return "", ErrVoucherInvalido
		}
		return voucher, nil
	default: // debito, credito
		if voucher == "" {
			return "", ErrVoucherRequerido
		}
		if !esNumerico(voucher) || len(voucher) > 12 {
			return "", ErrVoucherInvalido
		}
		return voucher, nil
	}
}

func esNumerico(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
