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

// RequestService is the lifecycle controller: it owns every transition of
// request.status, and (together with the negotiation service, which it
// hands the accepted terms to) is the only writer of negotiation.status.
type RequestService interface {
	Create(ctx context.Context, p CreateRequestParams) (*model.Request, error)
	Update(ctx context.Context, id uint64, actorUID string, p UpdateRequestParams) (*model.Request, error)
	Delete(ctx context.Context, id uint64, actorUID string) error
	List(ctx context.Context, f repository.RequestFilter) ([]model.Request, int64, error)
	Get(ctx context.Context, id uint64) (*RequestDetail, error)
	Cancel(ctx context.Context, id uint64, actorUID string) (*model.Request, error)
	AcceptOffer(ctx context.Context, requestID, offerID uint64, actorUID string) (*model.Negotiation, error)
	Complete(ctx context.Context, id uint64, actorUID string) (*model.Request, error)
}

type CreateRequestParams struct {
	Title          string
	Description    string
	Type           model.RequestType
	ItemID         *uint64
	ItemQuantity   *uint
	SuggestedPrice *float64
	Currency       currency.Unit
	RequesterUID   string
}

type UpdateRequestParams struct {
	Title          string
	Description    string
	Type           model.RequestType
	ItemID         *uint64
	ItemQuantity   *uint
	SuggestedPrice *float64
	Currency       currency.Unit
}

type RequestDetail struct {
	Request     *model.Request
	Offers      []model.Offer
	Negotiation *model.Negotiation
}

type requestService struct {
	requestRepo repository.RequestRepository
	offerRepo   repository.OfferRepository
	negRepo     repository.NegotiationRepository
	itemRepo    repository.ItemRepository
	notify      Notifier
}

func NewRequestService(requestRepo repository.RequestRepository, offerRepo repository.OfferRepository, negRepo repository.NegotiationRepository, itemRepo repository.ItemRepository, notify Notifier) RequestService {
	if notify == nil {
		notify = NopNotifier()
	}
	return &requestService{
		requestRepo: requestRepo,
		offerRepo:   offerRepo,
		negRepo:     negRepo,
		itemRepo:    itemRepo,
		notify:      notify,
	}
}

func (s *requestService) validate(ctx context.Context, title string, typ model.RequestType, itemID *uint64, itemQty *uint, price *float64, cur currency.Unit) error {
	if title == "" || utf8.RuneCountInString(title) > 120 {
		return errors.New("invalid title")
	}
	if !currency.Valid(cur) {
		return currency.ErrUnknownCurrency
	}
	if price != nil && *price < 0 {
		return ErrInvalidPrice
	}
	switch typ {
	case model.RequestTypeItem:
		if itemID == nil || itemQty == nil {
			return errors.New("item requests need an item and a quantity")
		}
		if *itemQty < 1 {
			return errors.New("item quantity must be at least 1")
		}
		if _, err := s.itemRepo.FindByID(ctx, *itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
	case model.RequestTypeGeneral:
		if itemID != nil || itemQty != nil {
			return errors.New("general requests cannot reference an item")
		}
	default:
		return errors.New("invalid request type")
	}
	return nil
}

func (s *requestService) Create(ctx context.Context, p CreateRequestParams) (*model.Request, error) {
	if p.RequesterUID == "" {
		return nil, errors.New("requester is required")
	}
	p.Title = strings.TrimSpace(p.Title)
	if err := s.validate(ctx, p.Title, p.Type, p.ItemID, p.ItemQuantity, p.SuggestedPrice, p.Currency); err != nil {
		return nil, err
	}
	req := &model.Request{
		Title:          p.Title,
		Description:    strings.TrimSpace(p.Description),
		Type:           p.Type,
		ItemID:         p.ItemID,
		ItemQuantity:   p.ItemQuantity,
		SuggestedPrice: p.SuggestedPrice,
		Currency:       string(p.Currency),
		Status:         model.RequestStatusOpen,
		RequesterUID:   p.RequesterUID,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Update is allowed while the request is OPEN or CANCELLED; editing a
// cancelled request puts it back on the board.
func (s *requestService) Update(ctx context.Context, id uint64, actorUID string, p UpdateRequestParams) (*model.Request, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.RequesterUID != actorUID {
		return nil, ErrForbidden
	}
	if req.Status != model.RequestStatusOpen && req.Status != model.RequestStatusCancelled {
		return nil, ErrInvalidTransition
	}
	p.Title = strings.TrimSpace(p.Title)
	if err := s.validate(ctx, p.Title, p.Type, p.ItemID, p.ItemQuantity, p.SuggestedPrice, p.Currency); err != nil {
		return nil, err
	}
	req.Title = p.Title
	req.Description = strings.TrimSpace(p.Description)
	req.Type = p.Type
	req.ItemID = p.ItemID
	req.ItemQuantity = p.ItemQuantity
	req.SuggestedPrice = p.SuggestedPrice
	req.Currency = string(p.Currency)
	req.Status = model.RequestStatusOpen
	if err := s.requestRepo.Save(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) Delete(ctx context.Context, id uint64, actorUID string) error {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if req.RequesterUID != actorUID {
		return ErrForbidden
	}
	if req.Status != model.RequestStatusOpen && req.Status != model.RequestStatusCancelled {
		return ErrInvalidTransition
	}
	return s.requestRepo.Delete(ctx, id)
}

func (s *requestService) List(ctx context.Context, f repository.RequestFilter) ([]model.Request, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.requestRepo.List(ctx, f)
}

func (s *requestService) Get(ctx context.Context, id uint64) (*RequestDetail, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	offers, err := s.offerRepo.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &RequestDetail{Request: req, Offers: offers}
	neg, err := s.negRepo.FindByRequest(ctx, id)
	if err == nil {
		detail.Negotiation = neg
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return detail, nil
}

func (s *requestService) Cancel(ctx context.Context, id uint64, actorUID string) (*model.Request, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.RequesterUID != actorUID {
		return nil, ErrForbidden
	}
	req, err = s.requestRepo.CancelIfOpen(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return req, nil
}

// AcceptOffer is the OPEN -> IN_NEGOTIATION transition. Permission and
// state checks run first; the storage transaction re-checks state, so a
// concurrent accept that loses the race surfaces as ErrRequestNotOpen.
func (s *requestService) AcceptOffer(ctx context.Context, requestID, offerID uint64, actorUID string) (*model.Negotiation, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if req.RequesterUID != actorUID {
		return nil, ErrForbidden
	}
	offer, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if offer.RequestID != requestID {
		return nil, ErrNotFound
	}
	if offer.Status != model.OfferStatusPending {
		return nil, ErrInvalidTransition
	}
	if req.Status != model.RequestStatusOpen {
		return nil, ErrRequestNotOpen
	}

	neg, err := s.requestRepo.AcceptOffer(ctx, requestID, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrRequestNotOpen
		}
		if errors.Is(err, repository.ErrStaleOffer) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.notify.Whisper(ctx, neg.OffererUID,
		fmt.Sprintf("Your offer on \"%s\" was accepted. Open the request board to negotiate.", req.Title))
	return neg, nil
}

// Complete is deliberately asymmetric: only the accepted offerer, the
// party that fulfills the request, may attest completion.
func (s *requestService) Complete(ctx context.Context, id uint64, actorUID string) (*model.Request, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if actorUID == req.RequesterUID {
		return nil, ErrForbidden
	}
	neg, err := s.negRepo.FindByRequest(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	if actorUID != neg.OffererUID {
		return nil, ErrForbidden
	}
	if neg.Status != model.NegotiationStatusAgreed {
		return nil, ErrNotAgreed
	}

	req, err = s.requestRepo.CompleteIfAccepted(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.notify.Whisper(ctx, req.RequesterUID,
		fmt.Sprintf("\"%s\" was marked completed by the offerer.", req.Title))
	return req, nil
}
