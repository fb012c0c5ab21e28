package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParLocal is a (producto_id, codigo) pair from the local membership tables.
// It says WHAT a caja may sell; prices and names live in the flex master.
type ParLocal struct {
	ProductoID int64
	Codigo     string
}

type CatalogoRepository interface {
	ParesPorCaja(ctx context.Context, cajaID uuid.UUID) ([]ParLocal, error)
	CodigoPorProducto(ctx context.Context, productoID int64) (string, error)
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) ParesPorCaja(ctx context.Context, cajaID uuid.UUID) ([]ParLocal, error) {
	var pares []ParLocal
	err := r.db.WithContext(ctx).
		Table("catalogo_cajas cc").
		Select("pl.id AS producto_id, pl.codigo AS codigo").
		Joins("JOIN productos_locales pl ON pl.id = cc.producto_id").
		Where("cc.caja_id = ?", cajaID).
		Scan(&pares).Error
	return pares, err
}

func (r *catalogoRepo) CodigoPorProducto(ctx context.Context, productoID int64) (string, error) {
	var codigo string
	err := r.db.WithContext(ctx).
		Table("productos_locales").
		Select("codigo").
		Where("id = ?", productoID).
		Scan(&codigo).Error
	return codigo, err
}
