package repository

import (
	"context"

	"clubpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	SumTotalByApertura(ctx context.Context, aperturaID uuid.UUID) (decimal.Decimal, error)
	ListByApertura(ctx context.Context, aperturaID uuid.UUID) ([]model.Venta, error)
	// ListPendientesFlex returns the sales the invoicing agent still owes work
	// on: boleta requested, not yet emitted on Factura X.
	ListPendientesFlex(ctx context.Context, limit int) ([]model.Venta, error)
	NextCorrelativoFlex(ctx context.Context, tx *gorm.DB) (int64, error)
	// SetIDFx records the remote invoice id while the sale stays pendiente.
	SetIDFx(ctx context.Context, id uuid.UUID, idFx string) error
	// MarcarEmitida transitions pendiente -> emitida. The WHERE guard makes
	// the transition idempotent under concurrent agent runs.
	MarcarEmitida(ctx context.Context, id uuid.UUID) error
	SetCorreoEstado(ctx context.Context, id uuid.UUID, estado string) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles").Preload("MedioPago").Preload("Cliente").
		First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) SumTotalByApertura(ctx context.Context, aperturaID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("apertura_id = ?", aperturaID).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *ventaRepo) ListByApertura(ctx context.Context, aperturaID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("apertura_id = ?", aperturaID).
		Preload("Detalles").Preload("MedioPago").Preload("Cliente").
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) ListPendientesFlex(ctx context.Context, limit int) ([]model.Venta, error) {
	var ventas []model.Venta
	q := r.db.WithContext(ctx).
		Where("facturacion_estado = ? AND id_fx IS NULL AND correlativo_flex > 0", model.FacturacionPendiente).
		Preload("Detalles").Preload("MedioPago").Preload("Cliente").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) NextCorrelativoFlex(ctx context.Context, tx *gorm.DB) (int64, error) {
	// PostgreSQL sequence keeps the correlativo atomic across registers.
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('ventas_correlativo_flex_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) SetIDFx(ctx context.Context, id uuid.UUID, idFx string) error {
	return r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ? AND facturacion_estado = ?", id, model.FacturacionPendiente).
		Update("id_fx", idFx).Error
}

func (r *ventaRepo) MarcarEmitida(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ? AND facturacion_estado = ?", id, model.FacturacionPendiente).
		Update("facturacion_estado", model.FacturacionEmitida).Error
}

func (r *ventaRepo) SetCorreoEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("id = ?", id).
		Update("correo_estado", estado).Error
}
