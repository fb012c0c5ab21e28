package repository

import (
	"context"

	"clubpos/internal/model"

	"gorm.io/gorm"
)

type MedioPagoRepository interface {
	Create(ctx context.Context, m *model.MedioPago) error
}

type medioPagoRepo struct{ db *gorm.DB }

func NewMedioPagoRepository(db *gorm.DB) MedioPagoRepository { return &medioPagoRepo{db: db} }

func (r *medioPagoRepo) Create(ctx context.Context, m *model.MedioPago) error {
	return r.db.WithContext(ctx).Create(m).Error
}
