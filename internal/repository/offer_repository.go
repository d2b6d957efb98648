package repository

import (
	"context"

	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferRepository interface {
	// Create inserts a PENDING offer. The request row is locked and
	// re-checked inside the same transaction, so an offer racing an
	// accept cannot attach to a request that already left OPEN;
	// ErrStaleState is returned instead.
	Create(ctx context.Context, o *model.Offer) error
	FindByID(ctx context.Context, id uint64) (*model.Offer, error)
	ListByRequest(ctx context.Context, requestID uint64) ([]model.Offer, error)
	ListByOfferer(ctx context.Context, offererUID string) ([]model.Offer, error)

	// UpdateStatusIfPending is the conditional transition used for reject
	// and withdraw; ErrStaleState means the offer already left PENDING.
	UpdateStatusIfPending(ctx context.Context, id uint64, status model.OfferStatus) (*model.Offer, error)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, o *model.Offer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, o.RequestID).Error; err != nil {
			return err
		}
		if req.Status != model.RequestStatusOpen {
			return ErrStaleState
		}
		return tx.Create(o).Error
	})
}

func (r *offerRepository) FindByID(ctx context.Context, id uint64) (*model.Offer, error) {
	var o model.Offer
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *offerRepository) ListByRequest(ctx context.Context, requestID uint64) ([]model.Offer, error) {
	var list []model.Offer
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *offerRepository) ListByOfferer(ctx context.Context, offererUID string) ([]model.Offer, error) {
	var list []model.Offer
	if err := r.db.WithContext(ctx).
		Where("offerer_uid = ?", offererUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *offerRepository) UpdateStatusIfPending(ctx context.Context, id uint64, status model.OfferStatus) (*model.Offer, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Offer{}).
		Where("id = ? AND status = ?", id, model.OfferStatusPending).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleState
	}
	return r.FindByID(ctx, id)
}
