package repository

import (
	"context"

	"clubpos/internal/model"

	"gorm.io/gorm"
)

type ClienteRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Cliente, error)
	Create(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) FindByEmail(ctx context.Context, email string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	return &c, err
}

func (r *clienteRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	return tx.WithContext(ctx).Create(c).Error
}
