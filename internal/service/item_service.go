package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
	"gorm.io/gorm"
)

type ItemService interface {
	Get(ctx context.Context, id uint64) (*model.Item, error)
	List(ctx context.Context, limit, offset int, modID string) ([]model.Item, int64, error)
	Register(ctx context.Context, name, registryKey, modID string, stackSize uint) (*model.Item, error)
}

type itemService struct {
	repo repository.ItemRepository
}

func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

func (s *itemService) Get(ctx context.Context, id uint64) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, limit, offset int, modID string) ([]model.Item, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset, strings.TrimSpace(modID))
}

func (s *itemService) Register(ctx context.Context, name, registryKey, modID string, stackSize uint) (*model.Item, error) {
	name = strings.TrimSpace(name)
	registryKey = strings.TrimSpace(registryKey)
	modID = strings.TrimSpace(modID)
	if name == "" || utf8.RuneCountInString(name) > 120 {
		return nil, errors.New("invalid item name")
	}
	if registryKey == "" || !strings.Contains(registryKey, ":") {
		return nil, errors.New("registry key must look like namespace:path")
	}
	if modID == "" {
		modID = strings.SplitN(registryKey, ":", 2)[0]
	}
	if stackSize == 0 {
		stackSize = 64
	}
	item := &model.Item{
		Name:        name,
		RegistryKey: registryKey,
		ModID:       modID,
		StackSize:   stackSize,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return s.repo.FindByRegistryKey(ctx, registryKey)
}
