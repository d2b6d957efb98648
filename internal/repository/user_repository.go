package repository

import (
	"context"
	"time"

	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	FindByPlayerName(ctx context.Context, name string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	TouchLogin(ctx context.Context, uid string) error
	NameByUID(ctx context.Context, uid string) (string, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByPlayerName(ctx context.Context, name string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("player_name = ?", name).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepository) TouchLogin(ctx context.Context, uid string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("uid = ?", uid).
		Update("last_login", now).Error
}

func (r *userRepository) NameByUID(ctx context.Context, uid string) (string, error) {
	u, err := r.FindByUID(ctx, uid)
	if err != nil {
		return "", err
	}
	return u.PlayerName, nil
}
