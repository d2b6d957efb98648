package repository

import (
	"context"

	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageOutcome is what the caller decides after seeing the freshly
// appended log. AppendMessage applies it in the same transaction as the
// insert so the two status machines can never drift apart.
type MessageOutcome struct {
	NegotiationStatus model.NegotiationStatus
	RequestStatus     model.RequestStatus // empty = leave the request alone
	RejectOffer       bool                // mark the spawning offer REJECTED

	CurrentPrice      *float64
	CurrentCurrency   string
	RequesterAccepted bool
	OffererAccepted   bool
}

type NegotiationRepository interface {
	FindByID(ctx context.Context, id uint64) (*model.Negotiation, error)
	FindByRequest(ctx context.Context, requestID uint64) (*model.Negotiation, error)
	ListMessages(ctx context.Context, negotiationID uint64) ([]model.NegotiationMessage, error)

	// AppendMessage inserts msg and recomputes negotiation state in one
	// transaction. The negotiation row is locked for the duration, so two
	// concurrent posts are serialized and the second decides against a log
	// that already contains the first. ErrStaleState is returned when the
	// negotiation is no longer IN_PROGRESS by the time the lock is held.
	AppendMessage(ctx context.Context, negotiationID uint64, msg *model.NegotiationMessage,
		decide func(n *model.Negotiation, log []model.NegotiationMessage) (MessageOutcome, error)) error
}

type negotiationRepository struct {
	db *gorm.DB
}

func NewNegotiationRepository(db *gorm.DB) NegotiationRepository {
	return &negotiationRepository{db: db}
}

func (r *negotiationRepository) FindByID(ctx context.Context, id uint64) (*model.Negotiation, error) {
	var n model.Negotiation
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// FindByRequest returns the latest negotiation for a request. Earlier
// FAILED ones from rejected rounds keep their rows as audit.
func (r *negotiationRepository) FindByRequest(ctx context.Context, requestID uint64) (*model.Negotiation, error) {
	var n model.Negotiation
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id DESC").
		First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *negotiationRepository) ListMessages(ctx context.Context, negotiationID uint64) ([]model.NegotiationMessage, error) {
	var msgs []model.NegotiationMessage
	if err := r.db.WithContext(ctx).
		Where("negotiation_id = ?", negotiationID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *negotiationRepository) AppendMessage(ctx context.Context, negotiationID uint64, msg *model.NegotiationMessage,
	decide func(n *model.Negotiation, log []model.NegotiationMessage) (MessageOutcome, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n model.Negotiation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&n, negotiationID).Error; err != nil {
			return err
		}
		if n.Status != model.NegotiationStatusInProgress {
			return ErrStaleState
		}

		msg.NegotiationID = negotiationID
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		var log []model.NegotiationMessage
		if err := tx.Where("negotiation_id = ?", negotiationID).
			Order("id ASC").
			Find(&log).Error; err != nil {
			return err
		}

		out, err := decide(&n, log)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Negotiation{}).
			Where("id = ?", negotiationID).
			Updates(map[string]interface{}{
				"status":             out.NegotiationStatus,
				"current_price":      out.CurrentPrice,
				"current_currency":   out.CurrentCurrency,
				"requester_accepted": out.RequesterAccepted,
				"offerer_accepted":   out.OffererAccepted,
			}).Error; err != nil {
			return err
		}

		if out.RequestStatus != "" {
			res := tx.Model(&model.Request{}).
				Where("id = ? AND status = ?", n.RequestID, model.RequestStatusInNegotiation).
				Update("status", out.RequestStatus)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStaleState
			}
		}

		if out.RejectOffer {
			if err := tx.Model(&model.Offer{}).
				Where("id = ? AND status = ?", n.OfferID, model.OfferStatusAccepted).
				Update("status", model.OfferStatusRejected).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
