package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FlexProducto is a row from the flex master store: net list price plus the
// master's descriptive fields. Read-only; the master is owned elsewhere.
type FlexProducto struct {
	Codigo     string
	Glosa      string
	Valor      decimal.Decimal
	Compuesto  bool
	KitVirtual bool
}

type FlexRepository interface {
	// ListarPorCodigos joins the price list detail against the product master
	// for the given price list, restricted to the requested codes, ordered by
	// product name. Codes missing from the master are simply absent from the
	// result.
	ListarPorCodigos(ctx context.Context, listaPrecioID int, codigos []string) ([]FlexProducto, error)
	NombrePorCodigo(ctx context.Context, codigo string) (string, error)
}

type flexRepo struct{ db *gorm.DB }

func NewFlexRepository(db *gorm.DB) FlexRepository { return &flexRepo{db: db} }

func (r *flexRepo) ListarPorCodigos(ctx context.Context, listaPrecioID int, codigos []string) ([]FlexProducto, error) {
	var productos []FlexProducto
	if len(codigos) == 0 {
		return productos, nil
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.id_producto AS codigo,
		       p.glosa       AS glosa,
		       d.valor       AS valor,
		       p.compuesto   AS compuesto,
		       p.kitvirtual  AS kit_virtual
		FROM lista_precio_d d
		JOIN producto p ON p.id_producto = d.id_producto
		WHERE d.id_lisprecio = ? AND d.id_producto IN ?
		ORDER BY p.glosa ASC`, listaPrecioID, codigos).
		Scan(&productos).Error
	return productos, err
}

func (r *flexRepo) NombrePorCodigo(ctx context.Context, codigo string) (string, error) {
	var glosa string
	err := r.db.WithContext(ctx).
		Raw(`SELECT glosa FROM producto WHERE id_producto = ?`, codigo).
		Scan(&glosa).Error
	return glosa, err
}
