package service

import (
	"context"
	"sync"
	"time"

	"clubpos/internal/dto"
	"clubpos/internal/model"
	"clubpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AperturaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirAperturaRequest) (*dto.AperturaResponse, error)
	Cerrar(ctx context.Context, usuarioID, aperturaID uuid.UUID, req dto.CerrarAperturaRequest) (*dto.CierreResponse, error)
	Activa(ctx context.Context, usuarioID, cajaID uuid.UUID) (*dto.AperturaResponse, error)
	Listar(ctx context.Context, usuarioID uuid.UUID) ([]dto.AperturaResponse, error)
	Total(ctx context.Context, aperturaID uuid.UUID) (*dto.TotalAperturaResponse, error)
}

type aperturaService struct {
	repo        repository.AperturaRepository
	ventaRepo   repository.VentaRepository
	permisoRepo repository.PermisoRepository
	cajas       CajaService
	log         zerolog.Logger
	// cajaLocks serializes open attempts per caja, so check-then-insert is
	// race-free in-process; the partial unique index covers multi-process.
	cajaLocks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewAperturaService(
	repo repository.AperturaRepository,
	ventaRepo repository.VentaRepository,
	permisoRepo repository.PermisoRepository,
	cajas CajaService,
	log zerolog.Logger,
) AperturaService {
	return &aperturaService{
		repo:        repo,
		ventaRepo:   ventaRepo,
		permisoRepo: permisoRepo,
		cajas:       cajas,
		log:         log,
	}
}

func (s *aperturaService) lockCaja(cajaID uuid.UUID) *sync.Mutex {
	mu, _ := s.cajaLocks.LoadOrStore(cajaID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *aperturaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirAperturaRequest) (*dto.AperturaResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, ErrCajaNoEncontrada
	}
	if err := s.cajas.VerificarPermiso(ctx, usuarioID, cajaID); err != nil {
		return nil, err
	}

	mu := s.lockCaja(cajaID)
	mu.Lock()
	defer mu.Unlock()

	if existing, err := s.repo.FindAbiertaPorCaja(ctx, cajaID); err == nil && existing != nil && existing.Estado == model.AperturaAbierta {
		return nil, ErrAperturaYaAbierta
	}

	apertura := &model.Apertura{
		CajaID:       cajaID,
		UsuarioID:    usuarioID,
		Estado:       model.AperturaAbierta,
		MontoInicial: req.MontoInicial,
		OpenedAt:     time.Now(),
	}
	if err := s.repo.Create(ctx, apertura); err != nil {
		// The partial unique index catches the cross-process race the mutex
		// cannot see.
		s.log.Warn().Err(err).Str("caja_id", cajaID.String()).Msg("apertura create rejected")
		return nil, ErrAperturaYaAbierta
	}

	s.log.Info().
		Str("apertura_id", apertura.ID.String()).
		Str("caja_id", cajaID.String()).
		Str("monto_inicial", req.MontoInicial.String()).
		Msg("apertura abierta")

	return aperturaToResponse(apertura), nil
}

// Cerrar computes the drawer totals and transitions abierta → cerrada.
// monto_cierre defaults to the computed sales total, making descuadre zero
// when the cashier declares nothing.
func (s *aperturaService) Cerrar(ctx context.Context, usuarioID, aperturaID uuid.UUID, req dto.CerrarAperturaRequest) (*dto.CierreResponse, error) {
	apertura, err := s.repo.FindByID(ctx, aperturaID)
	if err != nil {
		return nil, ErrAperturaNoExiste
	}
	if apertura.Estado != model.AperturaAbierta {
		return nil, ErrAperturaCerrada
	}
	if err := s.cajas.VerificarPermiso(ctx, usuarioID, apertura.CajaID); err != nil {
		return nil, err
	}

	total, err := s.ventaRepo.SumTotalByApertura(ctx, aperturaID)
	if err != nil {
		return nil, err
	}

	montoCierre := total
	if req.MontoCierre != nil {
		montoCierre = *req.MontoCierre
	}
	descuadre := montoCierre.Sub(total)
	now := time.Now()

	apertura.Estado = model.AperturaCerrada
	apertura.TotalVentas = &total
	apertura.MontoCierre = &montoCierre
	apertura.Descuadre = &descuadre
	apertura.Observaciones = req.Observaciones
	apertura.ClosedAt = &now

	degradado := false
	if err := s.repo.Update(ctx, apertura); err != nil {
		// The drawer must still end up closed: fall back to the minimal
		// estado+fecha update and flag the response.
		s.log.Error().Err(err).Str("apertura_id", aperturaID.String()).
			Msg("full close update failed, falling back to minimal close")
		if err := s.repo.UpdateCierreMinimo(ctx, aperturaID, now); err != nil {
			return nil, err
		}
		degradado = true
	}

	s.log.Info().
		Str("apertura_id", aperturaID.String()).
		Str("total_ventas", total.String()).
		Str("descuadre", descuadre.String()).
		Bool("degradado", degradado).
		Msg("apertura cerrada")

	return &dto.CierreResponse{
		AperturaID:  aperturaID.String(),
		TotalVentas: total,
		MontoCierre: montoCierre,
		Descuadre:   descuadre,
		Estado:      model.AperturaCerrada,
		Degradado:   degradado,
	}, nil
}

func (s *aperturaService) Activa(ctx context.Context, usuarioID, cajaID uuid.UUID) (*dto.AperturaResponse, error) {
	if err := s.cajas.VerificarPermiso(ctx, usuarioID, cajaID); err != nil {
		return nil, err
	}
	apertura, err := s.repo.FindAbiertaPorCaja(ctx, cajaID)
	if err != nil {
		return nil, ErrAperturaNoAbierta
	}
	return aperturaToResponse(apertura), nil
}

func (s *aperturaService) Listar(ctx context.Context, usuarioID uuid.UUID) ([]dto.AperturaResponse, error) {
	cajaIDs, err := s.permisoRepo.CajasPermitidas(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	aperturas, err := s.repo.ListByCajas(ctx, cajaIDs, 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AperturaResponse, 0, len(aperturas))
	for i := range aperturas {
		out = append(out, *aperturaToResponse(&aperturas[i]))
	}
	return out, nil
}

// Total returns the running sales total of an apertura. While the apertura
// is open this is always recomputed, never read from the header.
func (s *aperturaService) Total(ctx context.Context, aperturaID uuid.UUID) (*dto.TotalAperturaResponse, error) {
	if _, err := s.repo.FindByID(ctx, aperturaID); err != nil {
		return nil, ErrAperturaNoExiste
	}
	total, err := s.ventaRepo.SumTotalByApertura(ctx, aperturaID)
	if err != nil {
		return nil, err
	}
	return &dto.TotalAperturaResponse{AperturaID: aperturaID.String(), TotalVentas: total}, nil
}

func aperturaToResponse(a *model.Apertura) *dto.AperturaResponse {
	resp := &dto.AperturaResponse{
		ID:           a.ID.String(),
		CajaID:       a.CajaID.String(),
		UsuarioID:    a.UsuarioID.String(),
		Estado:       a.Estado,
		MontoInicial: a.MontoInicial,
		MontoCierre:  a.MontoCierre,
		TotalVentas:  a.TotalVentas,
		Descuadre:    a.Descuadre,
		OpenedAt:     a.OpenedAt.Format(time.RFC3339),
	}
	if a.ClosedAt != nil {
		closed := a.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp
}
