package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clubpos/internal/config"
	"clubpos/internal/infra"
	"clubpos/internal/model"
	"clubpos/internal/repository"
	"clubpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errNotFound = errors.New("not found")

type stubVentaRepo struct {
	mu     sync.Mutex
	ventas map[uuid.UUID]*model.Venta
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) agregar(v *model.Venta) *model.Venta {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas[v.ID] = v
	return v
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agregar(v)
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return nil, errNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) SumTotalByApertura(_ context.Context, aperturaID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, v := range r.ventas {
		if v.AperturaID == aperturaID {
			total = total.Add(v.Total)
		}
	}
	return total, nil
}

func (r *stubVentaRepo) ListByApertura(_ context.Context, aperturaID uuid.UUID) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venta
	for _, v := range r.ventas {
		if v.AperturaID == aperturaID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubVentaRepo) ListPendientesFlex(_ context.Context, limit int) ([]model.Venta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venta
	for _, v := range r.ventas {
		if v.FacturacionEstado == model.FacturacionPendiente && v.IDFx == nil && v.CorrelativoFlex > 0 {
			out = append(out, *v)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *stubVentaRepo) NextCorrelativoFlex(_ context.Context, _ *gorm.DB) (int64, error) {
	return 0, errors.New("not used")
}

func (r *stubVentaRepo) SetIDFx(_ context.Context, id uuid.UUID, idFx string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.ventas[id]; ok && v.FacturacionEstado == model.FacturacionPendiente {
		v.IDFx = &idFx
	}
	return nil
}

func (r *stubVentaRepo) MarcarEmitida(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.ventas[id]; ok && v.FacturacionEstado == model.FacturacionPendiente {
		v.FacturacionEstado = model.FacturacionEmitida
	}
	return nil
}

func (r *stubVentaRepo) SetCorreoEstado(_ context.Context, id uuid.UUID, estado string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.ventas[id]; ok {
		v.CorreoEstado = estado
	}
	return nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

type stubCatalogoRepo struct{ codigos map[int64]string }

func (r *stubCatalogoRepo) ParesPorCaja(context.Context, uuid.UUID) ([]repository.ParLocal, error) {
	return nil, nil
}

func (r *stubCatalogoRepo) CodigoPorProducto(_ context.Context, productoID int64) (string, error) {
	return r.codigos[productoID], nil
}

var _ repository.CatalogoRepository = (*stubCatalogoRepo)(nil)

type stubFlexRepo struct{ nombres map[string]string }

func (r *stubFlexRepo) ListarPorCodigos(context.Context, int, []string) ([]repository.FlexProducto, error) {
	return nil, nil
}

func (r *stubFlexRepo) NombrePorCodigo(_ context.Context, codigo string) (string, error) {
	return r.nombres[codigo], nil
}

var _ repository.FlexRepository = (*stubFlexRepo)(nil)

// stubFacturador records every emitted payload and can be switched to fail.
type stubFacturador struct {
	failEmit bool
	failPDF  bool
	payloads []infra.BoletaRequest
}

func (f *stubFacturador) EmitirBoleta(_ context.Context, payload infra.BoletaRequest) (*infra.BoletaResult, error) {
	if f.failEmit {
		return nil, errors.New("service unavailable")
	}
	f.payloads = append(f.payloads, payload)
	return &infra.BoletaResult{
		ID:     "FX-" + payload.Document.Number,
		PDFURL: "https://facturax.example/documents/FX-" + payload.Document.Number + "?format=pdf",
	}, nil
}

func (f *stubFacturador) DescargarPDF(context.Context, string) ([]byte, error) {
	if f.failPDF {
		return nil, errors.New("pdf not ready")
	}
	return []byte("%PDF-1.4 stub"), nil
}

type stubMailer struct {
	fail     bool
	enviados []string
	adjuntos []string
}

func (m *stubMailer) Send(to, _, _ string, _ []byte, filename string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.enviados = append(m.enviados, to)
	m.adjuntos = append(m.adjuntos, filename)
	return nil
}

type agentFixture struct {
	agent      *worker.FlexSyncAgent
	ventas     *stubVentaRepo
	facturador *stubFacturador
	mailer     *stubMailer
}

func newAgentFixture(t *testing.T) *agentFixture {
	t.Helper()
	ventas := newStubVentaRepo()
	facturador := &stubFacturador{}
	mailer := &stubMailer{}
	agent := worker.NewFlexSyncAgent(
		ventas,
		&stubCatalogoRepo{codigos: map[int64]string{101: "BEB-001"}},
		&stubFlexRepo{nombres: map[string]string{"BEB-001": "Bebida 350cc"}},
		facturador,
		mailer,
		infra.NewCircuitBreaker(infra.DefaultCBConfig()),
		&config.Config{FacturaXTestMode: true},
		zerolog.Nop(),
	)
	return &agentFixture{agent: agent, ventas: ventas, facturador: facturador, mailer: mailer}
}

func (f *agentFixture) candidata(correlativo int64, email string) *model.Venta {
	v := &model.Venta{
		AperturaID:        uuid.New(),
		Total:             decimal.NewFromInt(2380),
		FacturacionEstado: model.FacturacionPendiente,
		CorrelativoFlex:   correlativo,
		CorreoEstado:      model.CorreoNoAplica,
		CreatedAt:         time.Now(),
		Detalles: []model.DetalleVenta{
			{ProductoID: 101, Cantidad: 2, PrecioUnitario: decimal.NewFromInt(1190), ListaPrecioID: 176},
		},
	}
	if email != "" {
		v.CorreoEstado = model.CorreoPendiente
		v.Cliente = &model.Cliente{ID: uuid.New(), Nombre: "Ana", Apellido: "Rojas", Email: &email}
	}
	return f.ventas.agregar(v)
}

func TestRunSinCandidatas(t *testing.T) {
	f := newAgentFixture(t)

	stats, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, &worker.Stats{}, stats)
}

func TestRunEmiteYEnvia(t *testing.T) {
	f := newAgentFixture(t)
	v := f.candidata(7, "ana@example.com")

	stats, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Exitosas)
	assert.Equal(t, 0, stats.Fallidas)

	guardada, err := f.ventas.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FacturacionEmitida, guardada.FacturacionEstado)
	require.NotNil(t, guardada.IDFx)
	assert.Equal(t, "FX-7", *guardada.IDFx)
	assert.Equal(t, model.CorreoEnviado, guardada.CorreoEstado)

	assert.Equal(t, []string{"ana@example.com"}, f.mailer.enviados)
	assert.Equal(t, []string{"boleta_7.pdf"}, f.mailer.adjuntos)

	// An emitted sale is never a candidate again.
	otra, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, otra.Total)
}

func TestRunDryRunNoMuta(t *testing.T) {
	f := newAgentFixture(t)
	v := f.candidata(7, "ana@example.com")

	stats, err := f.agent.Run(context.Background(), worker.RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 0, stats.Exitosas)

	guardada, err := f.ventas.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FacturacionPendiente, guardada.FacturacionEstado)
	assert.Nil(t, guardada.IDFx)
	assert.Empty(t, f.facturador.payloads)
	assert.Empty(t, f.mailer.enviados)
}

// A failed emission leaves the sale untouched for the next run.
func TestRunEmisionFalla(t *testing.T) {
	f := newAgentFixture(t)
	v := f.candidata(7, "")
	f.facturador.failEmit = true

	stats, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Fallidas)
	assert.Equal(t, 0, stats.Exitosas)

	guardada, err := f.ventas.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FacturacionPendiente, guardada.FacturacionEstado)
	assert.Nil(t, guardada.IDFx)
	assert.Empty(t, f.mailer.enviados)
}

// The emission is durable even when the email step fails; correo stays
// pendiente for a later run.
func TestRunCorreoFallaEmisionQueda(t *testing.T) {
	f := newAgentFixture(t)
	v := f.candidata(7, "ana@example.com")
	f.mailer.fail = true

	stats, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Exitosas)

	guardada, err := f.ventas.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FacturacionEmitida, guardada.FacturacionEstado)
	assert.Equal(t, model.CorreoPendiente, guardada.CorreoEstado)
}

// A sale whose cliente has no email skips the send entirely.
func TestRunSinEmailNoEnvia(t *testing.T) {
	f := newAgentFixture(t)
	f.candidata(7, "")

	stats, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Exitosas)
	assert.Empty(t, f.mailer.enviados)
}

// PDF download failure falls back to the locally rendered summary; the email
// still goes out.
func TestRunPDFCaidoUsaResumen(t *testing.T) {
	f := newAgentFixture(t)
	f.candidata(7, "ana@example.com")
	f.facturador.failPDF = true

	stats, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Exitosas)
	assert.Equal(t, []string{"ana@example.com"}, f.mailer.enviados)
}

func TestRunPayloadBoleta(t *testing.T) {
	f := newAgentFixture(t)
	f.candidata(42, "ana@example.com")

	_, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	require.Len(t, f.facturador.payloads, 1)
	p := f.facturador.payloads[0]

	assert.Equal(t, "CL39", p.DocumentType)
	assert.True(t, p.Test)
	assert.False(t, p.Numbering)
	assert.Equal(t, "42", p.Document.Number)
	assert.Equal(t, "CLP", p.Document.Currency)
	assert.Equal(t, "99522880-7", p.Document.Supplier.TaxID)
	assert.Equal(t, "66666666-6", p.Document.Customer.TaxID)
	assert.Equal(t, "Ana Rojas", p.Document.Customer.Name)
	assert.Equal(t, "2380", p.Document.Amount.Net)
	assert.Equal(t, "2380", p.Document.Amount.Total)
	assert.Equal(t, "19.00", p.Document.Amount.VATRate)

	require.Len(t, p.Document.Items, 1)
	assert.Equal(t, "Bebida 350cc", p.Document.Items[0].Name)
	assert.Equal(t, "2", p.Document.Items[0].Quantity)
	assert.Equal(t, "1190", p.Document.Items[0].Price)
	assert.Equal(t, "2380", p.Document.Items[0].Amount)
}

// Legacy detalle rows with a zero unit price fall back to the price stored in
// the lista-precio column.
func TestRunPayloadPrecioLegado(t *testing.T) {
	f := newAgentFixture(t)
	v := f.candidata(8, "")
	v.Detalles = []model.DetalleVenta{
		{ProductoID: 101, Cantidad: 1, PrecioUnitario: decimal.Zero, ListaPrecioID: 1500},
	}

	_, err := f.agent.Run(context.Background(), worker.RunOptions{})
	require.NoError(t, err)
	require.Len(t, f.facturador.payloads, 1)
	assert.Equal(t, "1500", f.facturador.payloads[0].Document.Items[0].Price)
}

func TestRunRespetaLimit(t *testing.T) {
	f := newAgentFixture(t)
	f.candidata(1, "")
	f.candidata(2, "")
	f.candidata(3, "")

	stats, err := f.agent.Run(context.Background(), worker.RunOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Exitosas)
}
