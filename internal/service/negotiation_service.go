package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/negotiation"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
	"gorm.io/gorm"
)

type NegotiationService interface {
	Get(ctx context.Context, negotiationID uint64, uid string) (*model.Negotiation, error)
	ListMessages(ctx context.Context, negotiationID uint64, uid string) ([]model.NegotiationMessage, error)
	PostMessage(ctx context.Context, p PostMessageParams) (*model.NegotiationMessage, error)
}

type PostMessageParams struct {
	NegotiationID uint64
	SenderUID     string
	Type          model.MessageType
	Content       string
	PriceOffer    *float64
	Currency      currency.Unit
}

type negotiationService struct {
	negRepo repository.NegotiationRepository
	notify  Notifier
}

func NewNegotiationService(negRepo repository.NegotiationRepository, notify Notifier) NegotiationService {
	if notify == nil {
		notify = NopNotifier()
	}
	return &negotiationService{negRepo: negRepo, notify: notify}
}

func (s *negotiationService) load(ctx context.Context, id uint64, uid string) (*model.Negotiation, error) {
	n, err := s.negRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if uid != n.RequesterUID && uid != n.OffererUID {
		return nil, ErrForbidden
	}
	return n, nil
}

func (s *negotiationService) Get(ctx context.Context, negotiationID uint64, uid string) (*model.Negotiation, error) {
	return s.load(ctx, negotiationID, uid)
}

func (s *negotiationService) ListMessages(ctx context.Context, negotiationID uint64, uid string) ([]model.NegotiationMessage, error) {
	if _, err := s.load(ctx, negotiationID, uid); err != nil {
		return nil, err
	}
	return s.negRepo.ListMessages(ctx, negotiationID)
}

// PostMessage validates the message for its type, appends it and applies
// the consequences in one transaction. The repository re-reads the log
// under lock, so simultaneous ACCEPTs cannot both conclude "not yet
// agreed" and the second one always sees the first in the log.
func (s *negotiationService) PostMessage(ctx context.Context, p PostMessageParams) (*model.NegotiationMessage, error) {
	n, err := s.load(ctx, p.NegotiationID, p.SenderUID)
	if err != nil {
		return nil, err
	}
	if n.Status != model.NegotiationStatusInProgress {
		return nil, ErrNegotiationClosed
	}

	p.Content = strings.TrimSpace(p.Content)
	if p.Content == "" || utf8.RuneCountInString(p.Content) > 500 {
		return nil, errors.New("content is required and capped at 500 chars")
	}

	msg := &model.NegotiationMessage{
		SenderUID: p.SenderUID,
		Type:      p.Type,
		Content:   p.Content,
	}
	switch p.Type {
	case model.MessageTypeCounterOffer:
		if p.PriceOffer == nil || *p.PriceOffer <= 0 || !currency.Valid(p.Currency) {
			return nil, ErrInvalidOffer
		}
		msg.PriceOffer = p.PriceOffer
		msg.Currency = string(p.Currency)
	case model.MessageTypeAccept:
		// Optional echo of the terms being accepted; never binding.
		if p.PriceOffer != nil {
			if *p.PriceOffer <= 0 || !currency.Valid(p.Currency) {
				return nil, ErrInvalidOffer
			}
			msg.PriceOffer = p.PriceOffer
			msg.Currency = string(p.Currency)
		}
	case model.MessageTypeMessage, model.MessageTypeReject:
		// Price has no meaning here and is dropped.
	default:
		return nil, ErrInvalidOffer
	}

	var agreed bool
	decide := func(n *model.Negotiation, log []model.NegotiationMessage) (repository.MessageOutcome, error) {
		out := negotiation.Resolve(log, n.RequesterUID, n.OffererUID, n.BasePrice, currency.Unit(n.BaseCurrency))
		res := repository.MessageOutcome{
			NegotiationStatus: model.NegotiationStatusInProgress,
			CurrentPrice:      out.CurrentPrice,
			CurrentCurrency:   string(out.CurrentCurrency),
			RequesterAccepted: out.RequesterAccepted,
			OffererAccepted:   out.OffererAccepted,
		}
		switch p.Type {
		case model.MessageTypeReject:
			res.NegotiationStatus = model.NegotiationStatusFailed
			res.RequestStatus = model.RequestStatusOpen
			res.RejectOffer = true
		case model.MessageTypeAccept:
			if out.Agreed() {
				agreed = true
				res.NegotiationStatus = model.NegotiationStatusAgreed
				res.RequestStatus = model.RequestStatusAccepted
			}
		}
		return res, nil
	}

	if err := s.negRepo.AppendMessage(ctx, p.NegotiationID, msg, decide); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrNegotiationClosed
		}
		return nil, err
	}

	other := n.OffererUID
	if p.SenderUID == n.OffererUID {
		other = n.RequesterUID
	}
	switch {
	case agreed:
		s.notify.Whisper(ctx, n.RequesterUID, "Deal agreed. Waiting for the offerer to fulfill the request.")
		s.notify.Whisper(ctx, n.OffererUID, "Deal agreed. Fulfill the request and mark it completed.")
	case p.Type == model.MessageTypeReject:
		s.notify.Whisper(ctx, other, "The negotiation was broken off; the request is open again.")
	case p.Type == model.MessageTypeCounterOffer:
		s.notify.Whisper(ctx, other,
			fmt.Sprintf("Counter-offer received: %s.", currency.Format(*msg.PriceOffer, currency.Unit(msg.Currency))))
	}
	return msg, nil
}
