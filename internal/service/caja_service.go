package service

import (
	"context"

	"clubpos/internal/dto"
	"clubpos/internal/repository"

	"github.com/google/uuid"
)

type CajaService interface {
	// ListarCajas returns only the cajas the cashier holds a permiso for.
	ListarCajas(ctx context.Context, usuarioID uuid.UUID) ([]dto.CajaResponse, error)
	VerificarPermiso(ctx context.Context, usuarioID, cajaID uuid.UUID) error
}

type cajaService struct {
	cajaRepo    repository.CajaRepository
	permisoRepo repository.PermisoRepository
}

func NewCajaService(cajaRepo repository.CajaRepository, permisoRepo repository.PermisoRepository) CajaService {
	return &cajaService{cajaRepo: cajaRepo, permisoRepo: permisoRepo}
}

func (s *cajaService) ListarCajas(ctx context.Context, usuarioID uuid.UUID) ([]dto.CajaResponse, error) {
	ids, err := s.permisoRepo.CajasPermitidas(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	cajas, err := s.cajaRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CajaResponse, 0, len(cajas))
	for _, c := range cajas {
		out = append(out, dto.CajaResponse{
			ID:         c.ID.String(),
			Detalle:    c.Detalle,
			EsVariable: c.EsVariable,
		})
	}
	return out, nil
}

func (s *cajaService) VerificarPermiso(ctx context.Context, usuarioID, cajaID uuid.UUID) error {
	ok, err := s.permisoRepo.ExisteParaCaja(ctx, usuarioID, cajaID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSinPermiso
	}
	return nil
}
