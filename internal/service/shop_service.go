package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
	"gorm.io/gorm"
)

type ShopService interface {
	Create(ctx context.Context, ownerUID string, p ShopParams) (*model.Shop, error)
	Update(ctx context.Context, id uint64, actorUID string, p ShopParams) (*model.Shop, error)
	Delete(ctx context.Context, id uint64, actorUID string) error
	Get(ctx context.Context, id uint64) (*ShopDetail, error)
	List(ctx context.Context, limit, offset int) ([]model.Shop, int64, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.Shop, error)

	AddListing(ctx context.Context, shopID uint64, actorUID string, p ListingParams) (*model.ShopListing, error)
	UpdateListing(ctx context.Context, listingID uint64, actorUID string, p ListingParams) (*model.ShopListing, error)
	RemoveListing(ctx context.Context, listingID uint64, actorUID string) error
}

type ShopParams struct {
	Name        string
	Description string
	World       string
	X, Y, Z     int
}

type ListingParams struct {
	ItemID    uint64
	UnitPrice float64
	Currency  currency.Unit
	Stock     uint
}

type ShopDetail struct {
	Shop     *model.Shop
	Listings []model.ShopListing
}

type shopService struct {
	shopRepo repository.ShopRepository
	itemRepo repository.ItemRepository
}

func NewShopService(shopRepo repository.ShopRepository, itemRepo repository.ItemRepository) ShopService {
	return &shopService{shopRepo: shopRepo, itemRepo: itemRepo}
}

func validateShopParams(p *ShopParams) error {
	p.Name = strings.TrimSpace(p.Name)
	p.World = strings.TrimSpace(p.World)
	if p.Name == "" || utf8.RuneCountInString(p.Name) > 120 {
		return errors.New("invalid shop name")
	}
	if p.World == "" {
		return errors.New("world is required")
	}
	return nil
}

func (s *shopService) Create(ctx context.Context, ownerUID string, p ShopParams) (*model.Shop, error) {
	if ownerUID == "" {
		return nil, errors.New("owner is required")
	}
	if err := validateShopParams(&p); err != nil {
		return nil, err
	}
	shop := &model.Shop{
		OwnerUID:    ownerUID,
		Name:        p.Name,
		Description: strings.TrimSpace(p.Description),
		World:       p.World,
		X:           p.X,
		Y:           p.Y,
		Z:           p.Z,
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *shopService) ownedShop(ctx context.Context, id uint64, actorUID string) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if shop.OwnerUID != actorUID {
		return nil, ErrForbidden
	}
	return shop, nil
}

func (s *shopService) Update(ctx context.Context, id uint64, actorUID string, p ShopParams) (*model.Shop, error) {
	shop, err := s.ownedShop(ctx, id, actorUID)
	if err != nil {
		return nil, err
	}
	if err := validateShopParams(&p); err != nil {
		return nil, err
	}
	shop.Name = p.Name
	shop.Description = strings.TrimSpace(p.Description)
	shop.World = p.World
	shop.X, shop.Y, shop.Z = p.X, p.Y, p.Z
	if err := s.shopRepo.Save(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *shopService) Delete(ctx context.Context, id uint64, actorUID string) error {
	if _, err := s.ownedShop(ctx, id, actorUID); err != nil {
		return err
	}
	return s.shopRepo.Delete(ctx, id)
}

func (s *shopService) Get(ctx context.Context, id uint64) (*ShopDetail, error) {
	shop, err := s.shopRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	listings, err := s.shopRepo.ListListings(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ShopDetail{Shop: shop, Listings: listings}, nil
}

func (s *shopService) List(ctx context.Context, limit, offset int) ([]model.Shop, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.shopRepo.List(ctx, limit, offset)
}

func (s *shopService) ListByOwner(ctx context.Context, ownerUID string) ([]model.Shop, error) {
	return s.shopRepo.ListByOwner(ctx, ownerUID)
}

func (s *shopService) validateListing(ctx context.Context, p ListingParams) error {
	if p.UnitPrice <= 0 {
		return ErrInvalidPrice
	}
	if !currency.Valid(p.Currency) {
		return currency.ErrUnknownCurrency
	}
	if _, err := s.itemRepo.FindByID(ctx, p.ItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *shopService) AddListing(ctx context.Context, shopID uint64, actorUID string, p ListingParams) (*model.ShopListing, error) {
	if _, err := s.ownedShop(ctx, shopID, actorUID); err != nil {
		return nil, err
	}
	if err := s.validateListing(ctx, p); err != nil {
		return nil, err
	}
	l := &model.ShopListing{
		ShopID:    shopID,
		ItemID:    p.ItemID,
		UnitPrice: p.UnitPrice,
		Currency:  string(p.Currency),
		Stock:     p.Stock,
	}
	if err := s.shopRepo.CreateListing(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *shopService) UpdateListing(ctx context.Context, listingID uint64, actorUID string, p ListingParams) (*model.ShopListing, error) {
	l, err := s.shopRepo.FindListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.ownedShop(ctx, l.ShopID, actorUID); err != nil {
		return nil, err
	}
	if err := s.validateListing(ctx, p); err != nil {
		return nil, err
	}
	l.ItemID = p.ItemID
	l.UnitPrice = p.UnitPrice
	l.Currency = string(p.Currency)
	l.Stock = p.Stock
	if err := s.shopRepo.SaveListing(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *shopService) RemoveListing(ctx context.Context, listingID uint64, actorUID string) error {
	l, err := s.shopRepo.FindListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.ownedShop(ctx, l.ShopID, actorUID); err != nil {
		return err
	}
	return s.shopRepo.DeleteListing(ctx, listingID)
}
