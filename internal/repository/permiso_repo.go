package repository

import (
	"context"

	"clubpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PermisoRepository interface {
	ExisteParaCaja(ctx context.Context, usuarioID, cajaID uuid.UUID) (bool, error)
	CajasPermitidas(ctx context.Context, usuarioID uuid.UUID) ([]uuid.UUID, error)
}

type permisoRepo struct{ db *gorm.DB }

func NewPermisoRepository(db *gorm.DB) PermisoRepository { return &permisoRepo{db: db} }

func (r *permisoRepo) ExisteParaCaja(ctx context.Context, usuarioID, cajaID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Permiso{}).
		Where("usuario_id = ? AND caja_id = ?", usuarioID, cajaID).
		Count(&count).Error
	return count > 0, err
}

func (r *permisoRepo) CajasPermitidas(ctx context.Context, usuarioID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Permiso{}).
		Where("usuario_id = ?", usuarioID).
		Pluck("caja_id", &ids).Error
	return ids, err
}
