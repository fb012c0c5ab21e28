package service

import (
	"context"

	"clubpos/internal/config"
	"clubpos/internal/dto"
	"clubpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ivaFactor converts the flex net list price to the gross selling price.
var ivaFactor = decimal.NewFromFloat(1.19)

// CatalogoService resolves the sellable catalog of a caja at request time:
// the club store says WHICH products a caja carries, the flex master store
// says what they are called and what they cost.
type CatalogoService interface {
	ListarProductos(ctx context.Context, usuarioID, cajaID uuid.UUID) ([]dto.ProductoResponse, error)
}

type catalogoService struct {
	cajas        CajaService
	catalogoRepo repository.CatalogoRepository
	flexRepo     repository.FlexRepository
	cfg          *config.Config
	log          zerolog.Logger
}

func NewCatalogoService(
	cajas CajaService,
	catalogoRepo repository.CatalogoRepository,
	flexRepo repository.FlexRepository,
	cfg *config.Config,
	log zerolog.Logger,
) CatalogoService {
	return &catalogoService{
		cajas:        cajas,
		catalogoRepo: catalogoRepo,
		flexRepo:     flexRepo,
		cfg:          cfg,
		log:          log,
	}
}

// ListarProductos joins the caja's membership pairs against the flex master.
// Products missing from the master are dropped without error; a master
// outage degrades to an empty catalog so the selection view still renders.
func (s *catalogoService) ListarProductos(ctx context.Context, usuarioID, cajaID uuid.UUID) ([]dto.ProductoResponse, error) {
	if err := s.cajas.VerificarPermiso(ctx, usuarioID, cajaID); err != nil {
		return nil, err
	}

	pares, err := s.catalogoRepo.ParesPorCaja(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	if len(pares) == 0 {
		return []dto.ProductoResponse{}, nil
	}

	codigos := make([]string, 0, len(pares))
	porCodigo := make(map[string]repository.ParLocal, len(pares))
	for _, par := range pares {
		if par.Codigo == "" {
			continue
		}
		codigos = append(codigos, par.Codigo)
		porCodigo[par.Codigo] = par
	}

	flexRows, err := s.flexRepo.ListarPorCodigos(ctx, s.cfg.IDListaPrecio, codigos)
	if err != nil {
		s.log.Warn().Err(err).Str("caja_id", cajaID.String()).
			Msg("flex master unreachable, serving empty catalog")
		return []dto.ProductoResponse{}, nil
	}

	// Flex rows arrive ordered by name; keep that order.
	productos := make([]dto.ProductoResponse, 0, len(flexRows))
	for _, row := range flexRows {
		par, ok := porCodigo[row.Codigo]
		if !ok {
			continue
		}
		productos = append(productos, dto.ProductoResponse{
			ProductoID: par.ProductoID,
			Codigo:     row.Codigo,
			Nombre:     row.Glosa,
			Precio:     row.Valor.Mul(ivaFactor).Round(0),
			Compuesto:  row.Compuesto,
			KitVirtual: row.KitVirtual,
		})
	}
	return productos, nil
}
