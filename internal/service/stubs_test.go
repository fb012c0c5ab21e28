package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"clubpos/internal/model"
	"clubpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("not found")

// ── stubPermisoRepo ───────────────────────────────────────────────────────────

type stubPermisoRepo struct {
	permisos map[uuid.UUID][]uuid.UUID // usuario -> cajas
}

func newStubPermisoRepo() *stubPermisoRepo {
	return &stubPermisoRepo{permisos: make(map[uuid.UUID][]uuid.UUID)}
}

func (r *stubPermisoRepo) permitir(usuarioID, cajaID uuid.UUID) {
	r.permisos[usuarioID] = append(r.permisos[usuarioID], cajaID)
}

func (r *stubPermisoRepo) ExisteParaCaja(_ context.Context, usuarioID, cajaID uuid.UUID) (bool, error) {
	for _, id := range r.permisos[usuarioID] {
		if id == cajaID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPermisoRepo) CajasPermitidas(_ context.Context, usuarioID uuid.UUID) ([]uuid.UUID, error) {
	return r.permisos[usuarioID], nil
}

var _ repository.PermisoRepository = (*stubPermisoRepo)(nil)

// ── stubCajaRepo ──────────────────────────────────────────────────────────────

type stubCajaRepo struct {
	cajas map[uuid.UUID]*model.Caja
}

func newStubCajaRepo() *stubCajaRepo {
	return &stubCajaRepo{cajas: make(map[uuid.UUID]*model.Caja)}
}

func (r *stubCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (r *stubCajaRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Caja, error) {
	var out []model.Caja
	for _, id := range ids {
		if c, ok := r.cajas[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

var _ repository.CajaRepository = (*stubCajaRepo)(nil)

// ── stubAperturaRepo ──────────────────────────────────────────────────────────

// stubAperturaRepo emulates the partial unique index: Create rejects a second
// abierta row for the same caja.
type stubAperturaRepo struct {
	mu         sync.Mutex
	aperturas  map[uuid.UUID]*model.Apertura
	failUpdate bool
	minimos    int // UpdateCierreMinimo invocations
}

func newStubAperturaRepo() *stubAperturaRepo {
	return &stubAperturaRepo{aperturas: make(map[uuid.UUID]*model.Apertura)}
}

func (r *stubAperturaRepo) Create(_ context.Context, a *model.Apertura) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.aperturas {
		if existing.CajaID == a.CajaID && existing.Estado == model.AperturaAbierta {
			return errors.New("duplicate key value violates unique constraint \"ux_aperturas_caja_abierta\"")
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.aperturas[a.ID] = &cp
	return nil
}

func (r *stubAperturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Apertura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.aperturas[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubAperturaRepo) FindAbiertaPorCaja(_ context.Context, cajaID uuid.UUID) (*model.Apertura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.aperturas {
		if a.CajaID == cajaID && a.Estado == model.AperturaAbierta {
			cp := *a
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *stubAperturaRepo) Update(_ context.Context, a *model.Apertura) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return errors.New("connection reset")
	}
	cp := *a
	r.aperturas[a.ID] = &cp
	return nil
}

func (r *stubAperturaRepo) UpdateCierreMinimo(_ context.Context, id uuid.UUID, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.aperturas[id]
	if !ok {
		return errNotFound
	}
	a.Estado = model.AperturaCerrada
	a.ClosedAt = &closedAt
	r.minimos++
	return nil
}

func (r *stubAperturaRepo) ListByCajas(_ context.Context, cajaIDs []uuid.UUID, _ int) ([]model.Apertura, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Apertura
	for _, a := range r.aperturas {
		for _, id := range cajaIDs {
			if a.CajaID == id {
				out = append(out, *a)
			}
		}
	}
	return out, nil
}

var _ repository.AperturaRepository = (*stubAperturaRepo)(nil)

// ── stubVentaRepo ─────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	mu          sync.Mutex
	ventas      map[uuid.UUID]*model.Venta
	correlativo int64
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) agregar(v *model.Venta) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.ventas[v.ID] = v
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
	r.mu.Lock()
	defer r.mu.Unlock()
	r.correlativo++
	return r.correlativo, nil
}

func (r *stubVentaRepo) SetIDFx(_ context.Context, id uuid.UUID, idFx string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok || v.FacturacionEstado != model.FacturacionPendiente {
		return nil
	}
	v.IDFx = &idFx
	return nil
}

func (r *stubVentaRepo) MarcarEmitida(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok || v.FacturacionEstado != model.FacturacionPendiente {
		return nil
	}
	v.FacturacionEstado = model.FacturacionEmitida
	return nil
}

func (r *stubVentaRepo) SetCorreoEstado(_ context.Context, id uuid.UUID, estado string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.ventas[id]
	if !ok {
		return errNotFound
	}
	v.CorreoEstado = estado
	return nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── stubClienteRepo / stubMedioPagoRepo ───────────────────────────────────────

type stubClienteRepo struct {
	porEmail map[string]*model.Cliente
	creados  []*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{porEmail: make(map[string]*model.Cliente)}
}

func (r *stubClienteRepo) FindByEmail(_ context.Context, email string) (*model.Cliente, error) {
	c, ok := r.porEmail[email]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (r *stubClienteRepo) Create(_ context.Context, _ *gorm.DB, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Email != nil {
		r.porEmail[*c.Email] = c
	}
	r.creados = append(r.creados, c)
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

type stubMedioPagoRepo struct {
	fail    bool
	creados []model.MedioPago
}

func (r *stubMedioPagoRepo) Create(_ context.Context, m *model.MedioPago) error {
	if r.fail {
		return errors.New("insert failed")
	}
	r.creados = append(r.creados, *m)
	return nil
}

var _ repository.MedioPagoRepository = (*stubMedioPagoRepo)(nil)

// ── stubCatalogoRepo / stubFlexRepo ───────────────────────────────────────────

type stubCatalogoRepo struct {
	pares   map[uuid.UUID][]repository.ParLocal
	codigos map[int64]string
}

func newStubCatalogoRepo() *stubCatalogoRepo {
	return &stubCatalogoRepo{
		pares:   make(map[uuid.UUID][]repository.ParLocal),
		codigos: make(map[int64]string),
	}
}

func (r *stubCatalogoRepo) asignar(cajaID uuid.UUID, productoID int64, codigo string) {
	r.pares[cajaID] = append(r.pares[cajaID], repository.ParLocal{ProductoID: productoID, Codigo: codigo})
	r.codigos[productoID] = codigo
}

func (r *stubCatalogoRepo) ParesPorCaja(_ context.Context, cajaID uuid.UUID) ([]repository.ParLocal, error) {
	return r.pares[cajaID], nil
}

func (r *stubCatalogoRepo) CodigoPorProducto(_ context.Context, productoID int64) (string, error) {
	return r.codigos[productoID], nil
}

var _ repository.CatalogoRepository = (*stubCatalogoRepo)(nil)

type stubFlexRepo struct {
	productos map[string]repository.FlexProducto
	fail      bool
}

func newStubFlexRepo() *stubFlexRepo {
	return &stubFlexRepo{productos: make(map[string]repository.FlexProducto)}
}

func (r *stubFlexRepo) ListarPorCodigos(_ context.Context, _ int, codigos []string) ([]repository.FlexProducto, error) {
	if r.fail {
		return nil, errors.New("connection refused")
	}
	var out []repository.FlexProducto
	for _, codigo := range codigos {
		if p, ok := r.productos[codigo]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Glosa < out[j].Glosa })
	return out, nil
}

func (r *stubFlexRepo) NombrePorCodigo(_ context.Context, codigo string) (string, error) {
	if r.fail {
		return "", errors.New("connection refused")
	}
	return r.productos[codigo].Glosa, nil
}

var _ repository.FlexRepository = (*stubFlexRepo)(nil)

// ── stubMailer ────────────────────────────────────────────────────────────────

type stubMailer struct {
	fail     bool
	enviados []string // destination addresses
}

func (m *stubMailer) Send(to, _, _ string, _ []byte, _ string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.enviados = append(m.enviados, to)
	return nil
}
