package worker

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clubpos/internal/config"
	"clubpos/internal/infra"
	"clubpos/internal/model"
	"clubpos/internal/repository"

	"github.com/rs/zerolog"
)

// Facturador is the slice of the Factura X client the agent needs.
type Facturador interface {
	EmitirBoleta(ctx context.Context, payload infra.BoletaRequest) (*infra.BoletaResult, error)
	DescargarPDF(ctx context.Context, pdfURL string) ([]byte, error)
}

// Mailer sends one message with an optional PDF attachment.
type Mailer interface {
	Send(to, subject, htmlBody string, pdf []byte, filename string) error
}

type RunOptions struct {
	Limit  int           // max candidates per run; 0 = all
	Delay  time.Duration // pause between sales
	DryRun bool          // list candidates, mutate nothing
}

type Stats struct {
	Total    int
	Exitosas int
	Fallidas int
}

const emitMaxAttempts = 3

// FlexSyncAgent walks the sales flagged for electronic invoicing and pushes
// each one through Factura X, then emails the boleta to the customer. Every
// sale is processed independently: one failure never stops the run.
type FlexSyncAgent struct {
	ventaRepo    repository.VentaRepository
	catalogoRepo repository.CatalogoRepository
	flexRepo     repository.FlexRepository
	facturador   Facturador
	mailer       Mailer
	cb           *infra.CircuitBreaker
	cfg          *config.Config
	log          zerolog.Logger
}

func NewFlexSyncAgent(
	ventaRepo repository.VentaRepository,
	catalogoRepo repository.CatalogoRepository,
	flexRepo repository.FlexRepository,
	facturador Facturador,
	mailer Mailer,
	cb *infra.CircuitBreaker,
	cfg *config.Config,
	log zerolog.Logger,
) *FlexSyncAgent {
	return &FlexSyncAgent{
		ventaRepo:    ventaRepo,
		catalogoRepo: catalogoRepo,
		flexRepo:     flexRepo,
		facturador:   facturador,
		mailer:       mailer,
		cb:           cb,
		cfg:          cfg,
		log:          log,
	}
}

func (a *FlexSyncAgent) Run(ctx context.Context, opts RunOptions) (*Stats, error) {
	ventas, err := a.ventaRepo.ListPendientesFlex(ctx, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("listar candidatas: %w", err)
	}

	stats := &Stats{Total: len(ventas)}
	if len(ventas) == 0 {
		a.log.Info().Msg("sin ventas pendientes de facturación")
		return stats, nil
	}

	if opts.DryRun {
		for _, v := range ventas {
			a.log.Info().
				Str("venta_id", v.ID.String()).
				Int64("correlativo", v.CorrelativoFlex).
				Str("total", v.Total.String()).
				Msg("dry-run: candidata")
		}
		return stats, nil
	}

	for i := range ventas {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if err := a.procesarVenta(ctx, &ventas[i]); err != nil {
			stats.Fallidas++
			a.log.Error().Err(err).Str("venta_id", ventas[i].ID.String()).Msg("venta no sincronizada")
		} else {
			stats.Exitosas++
		}

		if opts.Delay > 0 && i < len(ventas)-1 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	a.log.Info().
		Int("total", stats.Total).
		Int("exitosas", stats.Exitosas).
		Int("fallidas", stats.Fallidas).
		Msg("sincronización terminada")
	return stats, nil
}

// procesarVenta emits the boleta, persists the document id, advances the
// facturación state machine, and finally attempts the customer email. The
// email step failing leaves correo_estado pendiente for the next run; the
// emission itself is already durable at that point.
func (a *FlexSyncAgent) procesarVenta(ctx context.Context, venta *model.Venta) error {
	payload := a.buildPayload(ctx, venta)

	var result *infra.BoletaResult
	err := withRetry(ctx, emitMaxAttempts, func(attempt int) error {
		return a.cb.Execute(func() error {
			var emitErr error
			result, emitErr = a.facturador.EmitirBoleta(ctx, payload)
			if emitErr != nil {
				a.log.Warn().Err(emitErr).Int("attempt", attempt+1).
					Str("venta_id", venta.ID.String()).Msg("emisión fallida")
			}
			return emitErr
		})
	})
	if err != nil {
		return fmt.Errorf("emitir boleta: %w", err)
	}

	if err := a.ventaRepo.SetIDFx(ctx, venta.ID, result.ID); err != nil {
		return fmt.Errorf("persistir id_fx: %w", err)
	}
	if err := a.ventaRepo.MarcarEmitida(ctx, venta.ID); err != nil {
		return fmt.Errorf("marcar emitida: %w", err)
	}
	venta.IDFx = &result.ID
	venta.FacturacionEstado = model.FacturacionEmitida

	a.log.Info().
		Str("venta_id", venta.ID.String()).
		Int64("correlativo", venta.CorrelativoFlex).
		Str("id_fx", result.ID).
		Msg("boleta emitida")

	if venta.CorreoEstado == model.CorreoPendiente {
		a.enviarBoleta(ctx, venta, result.PDFURL)
	}
	return nil
}

// enviarBoleta emails the official PDF, falling back to a locally rendered
// summary when the download fails. Best-effort: errors are logged only.
func (a *FlexSyncAgent) enviarBoleta(ctx context.Context, venta *model.Venta, pdfURL string) {
	if a.mailer == nil || venta.Cliente == nil || venta.Cliente.Email == nil || *venta.Cliente.Email == "" {
		return
	}
	email := *venta.Cliente.Email

	pdf, err := a.facturador.DescargarPDF(ctx, pdfURL)
	if err != nil {
		a.log.Warn().Err(err).Str("venta_id", venta.ID.String()).
			Msg("descarga de pdf fallida, adjuntando resumen local")
		pdf, err = infra.GenerateResumenPDF(venta, a.nombresDetalle(ctx, venta))
		if err != nil {
			a.log.Error().Err(err).Str("venta_id", venta.ID.String()).Msg("resumen local fallido")
			return
		}
	}

	subject := fmt.Sprintf("Boleta electrónica N° %d", venta.CorrelativoFlex)
	body := fmt.Sprintf(
		"<p>Estimado(a) %s,</p><p>Adjuntamos su boleta electrónica N° %d por un total de $%s.</p>",
		venta.Cliente.Nombre, venta.CorrelativoFlex, venta.Total.StringFixed(0))
	filename := fmt.Sprintf("boleta_%d.pdf", venta.CorrelativoFlex)

	if err := a.mailer.Send(email, subject, body, pdf, filename); err != nil {
		a.log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("envío de boleta fallido")
		return
	}
	if err := a.ventaRepo.SetCorreoEstado(ctx, venta.ID, model.CorreoEnviado); err != nil {
		a.log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("correo_estado no actualizado")
		return
	}
	venta.CorreoEstado = model.CorreoEnviado
	a.log.Info().Str("venta_id", venta.ID.String()).Str("email", email).Msg("boleta enviada por correo")
}

func (a *FlexSyncAgent) buildPayload(ctx context.Context, venta *model.Venta) infra.BoletaRequest {
	nombres := a.nombresDetalle(ctx, venta)

	items := make([]infra.BoletaItem, 0, len(venta.Detalles))
	for idx, d := range venta.Detalles {
		precio := d.PrecioUnitario.IntPart()
		if precio == 0 {
			// Legacy rows stored the price in the price-list column.
			precio = int64(d.ListaPrecioID)
		}
		nombre := nombres[d.ProductoID]
		if len(nombre) > 40 {
			nombre = nombre[:40]
		}
		items = append(items, infra.BoletaItem{
			Line:     strconv.Itoa(idx + 1),
			Name:     nombre,
			Quantity: strconv.Itoa(d.Cantidad),
			Price:    strconv.FormatInt(precio, 10),
			Amount:   strconv.FormatInt(precio*int64(d.Cantidad), 10),
		})
	}

	customer := infra.BoletaParty{
		TaxID:    "66666666-6", // RUT genérico de boleta
		Name:     "Cliente",
		Activity: "COMERCIAL",
	}
	if venta.Cliente != nil {
		if nombre := strings.TrimSpace(venta.Cliente.Nombre + " " + venta.Cliente.Apellido); nombre != "" {
			customer.Name = nombre
		}
		if venta.Cliente.Email != nil {
			customer.ContactEmail = *venta.Cliente.Email
		}
		if venta.Cliente.Telefono != nil {
			customer.ContactPhone = *venta.Cliente.Telefono
		}
	}

	total := strconv.FormatInt(venta.Total.IntPart(), 10)
	fecha := venta.CreatedAt
	if fecha.IsZero() {
		fecha = time.Now()
	}

	return infra.BoletaRequest{
		DocumentType: "CL39",
		Test:         a.cfg.FacturaXTestMode,
		Numbering:    false,
		Document: infra.BoletaDocument{
			Number:         strconv.FormatInt(venta.CorrelativoFlex, 10),
			Currency:       "CLP",
			IssuedDate:     fecha.Format("2006-01-02"),
			IssuedDateTime: fecha.Format("2006-01-02T15:04:05"),
			PaymentTerms:   "CONTADO",
			ServiceType:    "3",
			Supplier: infra.BoletaParty{
				TaxID:        "99522880-7",
				Name:         "ALIMENTAR SA",
				Address:      "AV QUILIN 1561",
				Municipality: "QUILIN",
				City:         "SANTIAGO",
			},
			Customer: customer,
			Amount: infra.BoletaAmount{
				Net:     total,
				Exempt:  "0",
				VATRate: "19.00",
				VAT:     "0",
				Total:   total,
			},
			Taxes: []interface{}{},
			Items: items,
		},
		Custom: infra.BoletaCustom{Observaciones: "VENTA BOLETA"},
	}
}

// nombresDetalle resolves flex display names for the sale's lines,
// best-effort. A missing master row degrades to a generic label.
func (a *FlexSyncAgent) nombresDetalle(ctx context.Context, venta *model.Venta) map[int64]string {
	nombres := make(map[int64]string, len(venta.Detalles))
	for _, d := range venta.Detalles {
		codigo, err := a.catalogoRepo.CodigoPorProducto(ctx, d.ProductoID)
		if err != nil || codigo == "" {
			nombres[d.ProductoID] = fmt.Sprintf("Producto %d", d.ProductoID)
			continue
		}
		nombre, err := a.flexRepo.NombrePorCodigo(ctx, codigo)
		if err != nil || nombre == "" {
			nombre = fmt.Sprintf("Producto %s", codigo)
		}
		nombres[d.ProductoID] = nombre
	}
	return nombres
}

func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			// 1s, 2s … (exponential backoff)
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
