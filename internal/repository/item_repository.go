package repository

import (
	"context"

	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByID(ctx context.Context, id uint64) (*model.Item, error)
	FindByRegistryKey(ctx context.Context, key string) (*model.Item, error)
	List(ctx context.Context, limit, offset int, modID string) ([]model.Item, int64, error)
	Upsert(ctx context.Context, item *model.Item) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindByRegistryKey(ctx context.Context, key string) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).Where("registry_key = ?", key).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, limit, offset int, modID string) ([]model.Item, int64, error) {
	var (
		items []model.Item
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Item{})
	if modID != "" {
		q = q.Where("mod_id = ?", modID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) Upsert(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "registry_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "mod_id", "stack_size"}),
		}).
		Create(item).Error
}
