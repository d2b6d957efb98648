package repository

import (
	"context"

	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(ctx context.Context, s *model.Shop) error
	FindByID(ctx context.Context, id uint64) (*model.Shop, error)
	Save(ctx context.Context, s *model.Shop) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Shop, int64, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.Shop, error)

	CreateListing(ctx context.Context, l *model.ShopListing) error
	FindListing(ctx context.Context, id uint64) (*model.ShopListing, error)
	SaveListing(ctx context.Context, l *model.ShopListing) error
	DeleteListing(ctx context.Context, id uint64) error
	ListListings(ctx context.Context, shopID uint64) ([]model.ShopListing, error)
}

type shopRepository struct {
	db *gorm.DB
}

func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

func (r *shopRepository) Create(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shopRepository) FindByID(ctx context.Context, id uint64) (*model.Shop, error) {
	var s model.Shop
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shopRepository) Save(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *shopRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", id).Delete(&model.ShopListing{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Shop{}, id).Error
	})
}

func (r *shopRepository) List(ctx context.Context, limit, offset int) ([]model.Shop, int64, error) {
	var (
		list  []model.Shop
		total int64
	)
	if err := r.db.WithContext(ctx).Model(&model.Shop{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *shopRepository) ListByOwner(ctx context.Context, ownerUID string) ([]model.Shop, error) {
	var list []model.Shop
	if err := r.db.WithContext(ctx).
		Where("owner_uid = ?", ownerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *shopRepository) CreateListing(ctx context.Context, l *model.ShopListing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *shopRepository) FindListing(ctx context.Context, id uint64) (*model.ShopListing, error) {
	var l model.ShopListing
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *shopRepository) SaveListing(ctx context.Context, l *model.ShopListing) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *shopRepository) DeleteListing(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&model.ShopListing{}, id).Error
}

func (r *shopRepository) ListListings(ctx context.Context, shopID uint64) ([]model.ShopListing, error) {
	var list []model.ShopListing
	if err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
