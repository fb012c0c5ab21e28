package repository

import (
	"context"

	"clubpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CajaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Caja, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *cajaRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Caja, error) {
	var cajas []model.Caja
	if len(ids) == 0 {
		return cajas, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("detalle ASC").Find(&cajas).Error
	return cajas, err
}
