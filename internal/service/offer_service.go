package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
	"gorm.io/gorm"
)

type OfferService interface {
	Create(ctx context.Context, requestID uint64, offererUID string, price *float64, cur currency.Unit, message string) (*model.Offer, error)
	ListByRequest(ctx context.Context, requestID uint64) ([]model.Offer, error)
	ListByOfferer(ctx context.Context, offererUID string) ([]model.Offer, error)
	Transition(ctx context.Context, offerID uint64, actorUID string, target model.OfferStatus) (*model.Offer, error)
}

type offerService struct {
	offerRepo   repository.OfferRepository
	requestRepo repository.RequestRepository
	lifecycle   RequestService
	notify      Notifier
}

func NewOfferService(offerRepo repository.OfferRepository, requestRepo repository.RequestRepository, lifecycle RequestService, notify Notifier) OfferService {
	if notify == nil {
		notify = NopNotifier()
	}
	return &offerService{
		offerRepo:   offerRepo,
		requestRepo: requestRepo,
		lifecycle:   lifecycle,
		notify:      notify,
	}
}

func (s *offerService) Create(ctx context.Context, requestID uint64, offererUID string, price *float64, cur currency.Unit, message string) (*model.Offer, error) {
	if offererUID == "" {
		return nil, errors.New("offerer is required")
	}
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.Status != model.RequestStatusOpen {
		return nil, ErrRequestNotOpen
	}
	if req.RequesterUID == offererUID {
		return nil, ErrSelfOffer
	}
	if price != nil && *price < 0 {
		return nil, ErrInvalidPrice
	}
	if !currency.Valid(cur) {
		return nil, currency.ErrUnknownCurrency
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > 500 {
		return nil, errors.New("message too long")
	}

	o := &model.Offer{
		RequestID:  requestID,
		OffererUID: offererUID,
		Price:      price,
		Currency:   string(cur),
		Message:    message,
		Status:     model.OfferStatusPending,
	}
	if err := s.offerRepo.Create(ctx, o); err != nil {
		// The insert re-checks the request under lock; a concurrent
		// accept between our read and the insert loses here.
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrRequestNotOpen
		}
		return nil, err
	}

	note := fmt.Sprintf("New offer on \"%s\".", req.Title)
	if price != nil {
		note = fmt.Sprintf("New offer on \"%s\": %s.", req.Title, currency.Format(*price, cur))
	}
	s.notify.Whisper(ctx, req.RequesterUID, note)
	return o, nil
}

func (s *offerService) ListByRequest(ctx context.Context, requestID uint64) ([]model.Offer, error) {
	return s.offerRepo.ListByRequest(ctx, requestID)
}

func (s *offerService) ListByOfferer(ctx context.Context, offererUID string) ([]model.Offer, error) {
	return s.offerRepo.ListByOfferer(ctx, offererUID)
}

// Transition moves a PENDING offer to ACCEPTED, REJECTED or WITHDRAWN.
// The accept path is delegated to the lifecycle controller, which applies
// the whole request transition atomically.
func (s *offerService) Transition(ctx context.Context, offerID uint64, actorUID string, target model.OfferStatus) (*model.Offer, error) {
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	req, err := s.requestRepo.FindByID(ctx, offer.RequestID)
	if err != nil {
		return nil, err
	}

	switch target {
	case model.OfferStatusAccepted:
		if _, err := s.lifecycle.AcceptOffer(ctx, offer.RequestID, offerID, actorUID); err != nil {
			return nil, err
		}
		return s.offerRepo.FindByID(ctx, offerID)

	case model.OfferStatusRejected:
		if req.RequesterUID != actorUID {
			return nil, ErrForbidden
		}
		if offer.Status != model.OfferStatusPending {
			return nil, ErrInvalidTransition
		}
		offer, err = s.offerRepo.UpdateStatusIfPending(ctx, offerID, model.OfferStatusRejected)
		if err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return nil, ErrInvalidTransition
			}
			return nil, err
		}
		s.notify.Whisper(ctx, offer.OffererUID,
			fmt.Sprintf("Your offer on \"%s\" was declined.", req.Title))
		return offer, nil

	case model.OfferStatusWithdrawn:
		if offer.OffererUID != actorUID {
			return nil, ErrForbidden
		}
		if offer.Status != model.OfferStatusPending {
			return nil, ErrInvalidTransition
		}
		offer, err = s.offerRepo.UpdateStatusIfPending(ctx, offerID, model.OfferStatusWithdrawn)
		if err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return nil, ErrInvalidTransition
			}
			return nil, err
		}
		return offer, nil

	default:
		return nil, ErrInvalidTransition
	}
}
