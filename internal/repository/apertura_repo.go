package repository

import (
	"context"
	"time"

	"clubpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AperturaRepository interface {
	Create(ctx context.Context, a *model.Apertura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Apertura, error)
	FindAbiertaPorCaja(ctx context.Context, cajaID uuid.UUID) (*model.Apertura, error)
	Update(ctx context.Context, a *model.Apertura) error
	// UpdateCierreMinimo flips estado and fecha_termino only. Fallback for
	// when the full close update fails: the drawer still ends up closed.
	UpdateCierreMinimo(ctx context.Context, id uuid.UUID, closedAt time.Time) error
	ListByCajas(ctx context.Context, cajaIDs []uuid.UUID, limit int) ([]model.Apertura, error)
}

type aperturaRepo struct{ db *gorm.DB }

func NewAperturaRepository(db *gorm.DB) AperturaRepository { return &aperturaRepo{db: db} }

func (r *aperturaRepo) Create(ctx context.Context, a *model.Apertura) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *aperturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Apertura, error) {
	var a model.Apertura
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *aperturaRepo) FindAbiertaPorCaja(ctx context.Context, cajaID uuid.UUID) (*model.Apertura, error) {
	var a model.Apertura
	err := r.db.WithContext(ctx).
		Where("caja_id = ? AND estado = ?", cajaID, model.AperturaAbierta).
		First(&a).Error
	return &a, err
}

func (r *aperturaRepo) Update(ctx context.Context, a *model.Apertura) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *aperturaRepo) UpdateCierreMinimo(ctx context.Context, id uuid.UUID, closedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Apertura{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado":    model.AperturaCerrada,
			"closed_at": closedAt,
		}).Error
}

func (r *aperturaRepo) ListByCajas(ctx context.Context, cajaIDs []uuid.UUID, limit int) ([]model.Apertura, error) {
	var aperturas []model.Apertura
	if len(cajaIDs) == 0 {
		return aperturas, nil
	}
	q := r.db.WithContext(ctx).
		Where("caja_id IN ?", cajaIDs).
		Order("opened_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&aperturas).Error
	return aperturas, err
}
