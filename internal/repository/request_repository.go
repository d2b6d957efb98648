package repository

import (
	"context"
	"time"

	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"gorm.io/gorm"
)

type RequestFilter struct {
	Status       model.RequestStatus
	Type         model.RequestType
	RequesterUID string
	Limit        int
	Offset       int
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id uint64) (*model.Request, error)
	Save(ctx context.Context, req *model.Request) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, f RequestFilter) ([]model.Request, int64, error)

	// AcceptOffer applies the whole offer-acceptance transition as one
	// transaction: the request leaves OPEN, the chosen offer becomes
	// ACCEPTED, every other PENDING offer on the request becomes REJECTED,
	// and the negotiation row is created. Exactly one concurrent caller
	// can win; losers get ErrStaleState when the request already left
	// OPEN, or ErrStaleOffer when the chosen offer left PENDING.
	AcceptOffer(ctx context.Context, requestID, offerID uint64) (*model.Negotiation, error)

	// CompleteIfAccepted conditionally moves ACCEPTED -> COMPLETED.
	CompleteIfAccepted(ctx context.Context, id uint64) (*model.Request, error)

	// CancelIfOpen conditionally moves OPEN -> CANCELLED.
	CancelIfOpen(ctx context.Context, id uint64) (*model.Request, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uint64) (*model.Request, error) {
	var req model.Request
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) Save(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *requestRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var negIDs []uint64
		if err := tx.Model(&model.Negotiation{}).
			Where("request_id = ?", id).
			Pluck("id", &negIDs).Error; err != nil {
			return err
		}
		if len(negIDs) > 0 {
			if err := tx.Where("negotiation_id IN ?", negIDs).
				Delete(&model.NegotiationMessage{}).Error; err != nil {
				return err
			}
			if err := tx.Where("request_id = ?", id).
				Delete(&model.Negotiation{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("request_id = ?", id).Delete(&model.Offer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Request{}, id).Error
	})
}

func (r *requestRepository) List(ctx context.Context, f RequestFilter) ([]model.Request, int64, error) {
	var (
		list  []model.Request
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Request{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.RequesterUID != "" {
		q = q.Where("requester_uid = ?", f.RequesterUID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *requestRepository) AcceptOffer(ctx context.Context, requestID, offerID uint64) (*model.Negotiation, error) {
	var neg model.Negotiation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update on status serializes concurrent accepts:
		// the request row leaves OPEN exactly once.
		res := tx.Model(&model.Request{}).
			Where("id = ? AND status = ?", requestID, model.RequestStatusOpen).
			Update("status", model.RequestStatusInNegotiation)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		res = tx.Model(&model.Offer{}).
			Where("id = ? AND request_id = ? AND status = ?", offerID, requestID, model.OfferStatusPending).
			Update("status", model.OfferStatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The request was still OPEN; only the offer went stale.
			// Rolling back leaves the request untouched.
			return ErrStaleOffer
		}

		if err := tx.Model(&model.Offer{}).
			Where("request_id = ? AND status = ?", requestID, model.OfferStatusPending).
			Update("status", model.OfferStatusRejected).Error; err != nil {
			return err
		}

		var req model.Request
		if err := tx.First(&req, requestID).Error; err != nil {
			return err
		}
		var offer model.Offer
		if err := tx.First(&offer, offerID).Error; err != nil {
			return err
		}

		basePrice := offer.Price
		baseCurrency := offer.Currency
		if basePrice == nil {
			basePrice = req.SuggestedPrice
			baseCurrency = req.Currency
		}
		neg = model.Negotiation{
			RequestID:       requestID,
			OfferID:         offerID,
			RequesterUID:    req.RequesterUID,
			OffererUID:      offer.OffererUID,
			Status:          model.NegotiationStatusInProgress,
			BasePrice:       basePrice,
			BaseCurrency:    baseCurrency,
			CurrentPrice:    basePrice,
			CurrentCurrency: baseCurrency,
		}
		return tx.Create(&neg).Error
	})
	if err != nil {
		return nil, err
	}
	return &neg, nil
}

func (r *requestRepository) CompleteIfAccepted(ctx context.Context, id uint64) (*model.Request, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Where("id = ? AND status = ?", id, model.RequestStatusAccepted).
		Updates(map[string]interface{}{
			"status":       model.RequestStatusCompleted,
			"completed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleState
	}
	return r.FindByID(ctx, id)
}

func (r *requestRepository) CancelIfOpen(ctx context.Context, id uint64) (*model.Request, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Where("id = ? AND status = ?", id, model.RequestStatusOpen).
		Update("status", model.RequestStatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleState
	}
	return r.FindByID(ctx, id)
}
