package service

import (
	"context"
	"fmt"

	"clubpos/internal/config"
	"clubpos/internal/dto"
	"clubpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CartStore holds staged carts keyed by (session token, caja). Implementations
// must overwrite wholesale on Guardar and report absence as (nil, nil).
type CartStore interface {
	Guardar(ctx context.Context, token string, cajaID uuid.UUID, carro *dto.Carro) error
	Obtener(ctx context.Context, token string, cajaID uuid.UUID) (*dto.Carro, error)
	Eliminar(ctx context.Context, token string, cajaID uuid.UUID) error
}

type CarroService interface {
	// Stage prices the selections and replaces whatever cart the session had
	// staged for this caja.
	Stage(ctx context.Context, usuarioID uuid.UUID, token string, cajaID uuid.UUID, req dto.StageCarroRequest) (*dto.Carro, error)
	// Restaurar returns the staged cart, or an empty cart when nothing is
	// staged (expired TTL included).
	Restaurar(ctx context.Context, usuarioID uuid.UUID, token string, cajaID uuid.UUID) (*dto.Carro, error)
	Limpiar(ctx context.Context, token string, cajaID uuid.UUID) error
}

type carroService struct {
	store        CartStore
	cajas        CajaService
	cajaRepo     repository.CajaRepository
	catalogo     CatalogoService
	catalogoRepo repository.CatalogoRepository
	flexRepo     repository.FlexRepository
	cfg          *config.Config
	log          zerolog.Logger
}

func NewCarroService(
	store CartStore,
	cajas CajaService,
	cajaRepo repository.CajaRepository,
	catalogo CatalogoService,
	catalogoRepo repository.CatalogoRepository,
	flexRepo repository.FlexRepository,
	cfg *config.Config,
	log zerolog.Logger,
) CarroService {
	return &carroService{
		store:        store,
		cajas:        cajas,
		cajaRepo:     cajaRepo,
		catalogo:     catalogo,
		catalogoRepo: catalogoRepo,
		flexRepo:     flexRepo,
		cfg:          cfg,
		log:          log,
	}
}

func (s *carroService) Stage(ctx context.Context, usuarioID uuid.UUID, token string, cajaID uuid.UUID, req dto.StageCarroRequest) (*dto.Carro, error) {
	if err := s.cajas.VerificarPermiso(ctx, usuarioID, cajaID); err != nil {
		return nil, err
	}
	caja, err := s.cajaRepo.FindByID(ctx, cajaID)
	if err != nil {
		return nil, ErrCajaNoEncontrada
	}

	var items []dto.CarroItem
	if caja.EsVariable {
		items, err = s.stageVariable(ctx, req)
	} else {
		items, err = s.stageCatalogo(ctx, usuarioID, cajaID, req)
	}
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Precio.Mul(decimal.NewFromInt(int64(item.Cantidad))))
	}

	carro := &dto.Carro{CajaID: cajaID.String(), Items: items, Total: total}
	if err := s.store.Guardar(ctx, token, cajaID, carro); err != nil {
		return nil, fmt.Errorf("guardar carro: %w", err)
	}
	return carro, nil
}

// stageCatalogo prices every selection from the resolved catalog; a product
// absent from the catalog (not assigned, or dropped by the flex join) cannot
// be staged.
func (s *carroService) stageCatalogo(ctx context.Context, usuarioID, cajaID uuid.UUID, req dto.StageCarroRequest) ([]dto.CarroItem, error) {
	productos, err := s.catalogo.ListarProductos(ctx, usuarioID, cajaID)
	if err != nil {
		return nil, err
	}
	porID := make(map[int64]dto.ProductoResponse, len(productos))
	for _, p := range productos {
		porID[p.ProductoID] = p
	}

	items := make([]dto.CarroItem, 0, len(req.Selecciones))
	for _, sel := range req.Selecciones {
		p, ok := porID[sel.ProductoID]
		if !ok {
			return nil, ErrProductoNoVendible
		}
		items = append(items, dto.CarroItem{
			ProductoID:    p.ProductoID,
			Codigo:        p.Codigo,
			Nombre:        p.Nombre,
			Precio:        p.Precio,
			Cantidad:      sel.Cantidad,
			ListaPrecioID: s.cfg.IDListaPrecio,
		})
	}
	return items, nil
}

// stageVariable takes the operator-entered price for every line. Names are
// looked up in the flex master best-effort; a missing name never blocks the
// sale on a variable-price caja.
func (s *carroService) stageVariable(ctx context.Context, req dto.StageCarroRequest) ([]dto.CarroItem, error) {
	items := make([]dto.CarroItem, 0, len(req.Selecciones))
	for _, sel := range req.Selecciones {
		if sel.Precio == nil || sel.Precio.LessThanOrEqual(decimal.Zero) {
			return nil, ErrPrecioRequerido
		}

		codigo, err := s.catalogoRepo.CodigoPorProducto(ctx, sel.ProductoID)
		if err != nil || codigo == "" {
			return nil, ErrProductoNoVendible
		}
		nombre, err := s.flexRepo.NombrePorCodigo(ctx, codigo)
		if err != nil || nombre == "" {
			s.log.Warn().Err(err).Str("codigo", codigo).Msg("flex name lookup failed")
			nombre = fmt.Sprintf("Producto %s", codigo)
		}

		items = append(items, dto.CarroItem{
			ProductoID: sel.ProductoID,
			Codigo:     codigo,
			Nombre:     nombre,
			Precio:     *sel.Precio,
			Cantidad:   sel.Cantidad,
		})
	}
	return items, nil
}

func (s *carroService) Restaurar(ctx context.Context, usuarioID uuid.UUID, token string, cajaID uuid.UUID) (*dto.Carro, error) {
	if err := s.cajas.VerificarPermiso(ctx, usuarioID, cajaID); err != nil {
		return nil, err
	}
	carro, err := s.store.Obtener(ctx, token, cajaID)
	if err != nil {
		return nil, err
	}
	if carro == nil {
		return &dto.Carro{CajaID: cajaID.String(), Items: []dto.CarroItem{}, Total: decimal.Zero}, nil
	}
	return carro, nil
}

func (s *carroService) Limpiar(ctx context.Context, token string, cajaID uuid.UUID) error {
	return s.store.Eliminar(ctx, token, cajaID)
}
