package service

import (
	"context"
	"strings"
	"testing"

	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *model.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id uint64) (*model.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

func (m *MockRequestRepository) Save(ctx context.Context, req *model.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRequestRepository) List(ctx context.Context, f repository.RequestFilter) ([]model.Request, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Request), args.Get(1).(int64), args.Error(2)
}

func (m *MockRequestRepository) AcceptOffer(ctx context.Context, requestID, offerID uint64) (*model.Negotiation, error) {
	args := m.Called(ctx, requestID, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Negotiation), args.Error(1)
}

func (m *MockRequestRepository) CompleteIfAccepted(ctx context.Context, id uint64) (*model.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

func (m *MockRequestRepository) CancelIfOpen(ctx context.Context, id uint64) (*model.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, o *model.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepository) FindByID(ctx context.Context, id uint64) (*model.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Offer), args.Error(1)
}

func (m *MockOfferRepository) ListByRequest(ctx context.Context, requestID uint64) ([]model.Offer, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Offer), args.Error(1)
}

func (m *MockOfferRepository) ListByOfferer(ctx context.Context, offererUID string) ([]model.Offer, error) {
	args := m.Called(ctx, offererUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Offer), args.Error(1)
}

func (m *MockOfferRepository) UpdateStatusIfPending(ctx context.Context, id uint64, status model.OfferStatus) (*model.Offer, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Offer), args.Error(1)
}

type MockNegotiationRepository struct {
	mock.Mock
}

func (m *MockNegotiationRepository) FindByID(ctx context.Context, id uint64) (*model.Negotiation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Negotiation), args.Error(1)
}

func (m *MockNegotiationRepository) FindByRequest(ctx context.Context, requestID uint64) (*model.Negotiation, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Negotiation), args.Error(1)
}

func (m *MockNegotiationRepository) ListMessages(ctx context.Context, negotiationID uint64) ([]model.NegotiationMessage, error) {
	args := m.Called(ctx, negotiationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NegotiationMessage), args.Error(1)
}

func (m *MockNegotiationRepository) AppendMessage(ctx context.Context, negotiationID uint64, msg *model.NegotiationMessage,
	decide func(n *model.Negotiation, log []model.NegotiationMessage) (repository.MessageOutcome, error)) error {
	args := m.Called(ctx, negotiationID, msg, decide)
	return args.Error(0)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uint64) (*model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) FindByRegistryKey(ctx context.Context, key string) (*model.Item, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, limit, offset int, modID string) ([]model.Item, int64, error) {
	args := m.Called(ctx, limit, offset, modID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) Upsert(ctx context.Context, item *model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func newRequestService(reqRepo *MockRequestRepository, offerRepo *MockOfferRepository, negRepo *MockNegotiationRepository, itemRepo *MockItemRepository) RequestService {
	return NewRequestService(reqRepo, offerRepo, negRepo, itemRepo, NopNotifier())
}

func uintPtr(v uint) *uint        { return &v }
func u64Ptr(v uint64) *uint64     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCreateRequest_ItemTypeRequiresItem(t *testing.T) {
	svc := newRequestService(new(MockRequestRepository), new(MockOfferRepository), new(MockNegotiationRepository), new(MockItemRepository))

	_, err := svc.Create(context.Background(), CreateRequestParams{
		Title:        "Need brass",
		Type:         model.RequestTypeItem,
		Currency:     currency.Emerald,
		RequesterUID: "p1",
	})
	assert.Error(t, err)
}

func TestCreateRequest_ItemTypeHappyPath(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	itemRepo := new(MockItemRepository)
	svc := newRequestService(reqRepo, new(MockOfferRepository), new(MockNegotiationRepository), itemRepo)

	itemRepo.On("FindByID", mock.Anything, uint64(7)).Return(&model.Item{ID: 7}, nil)
	reqRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Request")).Return(nil)

	req, err := svc.Create(context.Background(), CreateRequestParams{
		Title:        "Need brass",
		Type:         model.RequestTypeItem,
		ItemID:       u64Ptr(7),
		ItemQuantity: uintPtr(1),
		Currency:     currency.Emerald,
		RequesterUID: "p1",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RequestStatusOpen, req.Status)
	assert.Equal(t, uint64(7), *req.ItemID)
	reqRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
}

func TestCreateRequest_UnknownItem(t *testing.T) {
	itemRepo := new(MockItemRepository)
	svc := newRequestService(new(MockRequestRepository), new(MockOfferRepository), new(MockNegotiationRepository), itemRepo)

	itemRepo.On("FindByID", mock.Anything, uint64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), CreateRequestParams{
		Title:        "Need something",
		Type:         model.RequestTypeItem,
		ItemID:       u64Ptr(404),
		ItemQuantity: uintPtr(2),
		Currency:     currency.Emerald,
		RequesterUID: "p1",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRequest_NegativePrice(t *testing.T) {
	svc := newRequestService(new(MockRequestRepository), new(MockOfferRepository), new(MockNegotiationRepository), new(MockItemRepository))

	_, err := svc.Create(context.Background(), CreateRequestParams{
		Title:          "Cheap labor",
		Type:           model.RequestTypeGeneral,
		SuggestedPrice: floatPtr(-1),
		Currency:       currency.Emerald,
		RequesterUID:   "p1",
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestCreateRequest_GeneralRejectsItemFields(t *testing.T) {
	svc := newRequestService(new(MockRequestRepository), new(MockOfferRepository), new(MockNegotiationRepository), new(MockItemRepository))

	_, err := svc.Create(context.Background(), CreateRequestParams{
		Title:        "Build me a castle",
		Type:         model.RequestTypeGeneral,
		ItemID:       u64Ptr(1),
		ItemQuantity: uintPtr(1),
		Currency:     currency.Emerald,
		RequesterUID: "p1",
	})
	assert.Error(t, err)
}

func TestAcceptOffer_OnlyRequester(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	svc := newRequestService(reqRepo, new(MockOfferRepository), new(MockNegotiationRepository), new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusOpen,
	}, nil)

	_, err := svc.AcceptOffer(context.Background(), 1, 10, "p2")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAcceptOffer_RaceLoserGetsRequestNotOpen(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	offerRepo := new(MockOfferRepository)
	svc := newRequestService(reqRepo, offerRepo, new(MockNegotiationRepository), new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusOpen,
	}, nil)
	offerRepo.On("FindByID", mock.Anything, uint64(10)).Return(&model.Offer{
		ID: 10, RequestID: 1, OffererUID: "p2", Status: model.OfferStatusPending,
	}, nil)
	reqRepo.On("AcceptOffer", mock.Anything, uint64(1), uint64(10)).Return(nil, repository.ErrStaleState)

	_, err := svc.AcceptOffer(context.Background(), 1, 10, "p1")
	assert.ErrorIs(t, err, ErrRequestNotOpen)
}

func TestAcceptOffer_OfferWentStaleMidFlight(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	offerRepo := new(MockOfferRepository)
	svc := newRequestService(reqRepo, offerRepo, new(MockNegotiationRepository), new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusOpen,
	}, nil)
	offerRepo.On("FindByID", mock.Anything, uint64(10)).Return(&model.Offer{
		ID: 10, RequestID: 1, OffererUID: "p2", Status: model.OfferStatusPending,
	}, nil)
	// The offer was withdrawn between the precheck and the transaction; the
	// request is still open, so this is a bad transition, not a closed board.
	reqRepo.On("AcceptOffer", mock.Anything, uint64(1), uint64(10)).Return(nil, repository.ErrStaleOffer)

	_, err := svc.AcceptOffer(context.Background(), 1, 10, "p1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreateRequest_MultibyteTitleWithinCap(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	svc := newRequestService(reqRepo, new(MockOfferRepository), new(MockNegotiationRepository), new(MockItemRepository))

	reqRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Request")).Return(nil)

	// 100 runes but 300 bytes; the cap counts characters.
	title := strings.Repeat("納", 100)
	req, err := svc.Create(context.Background(), CreateRequestParams{
		Title:        title,
		Type:         model.RequestTypeGeneral,
		Currency:     currency.Emerald,
		RequesterUID: "p1",
	})
	assert.NoError(t, err)
	assert.Equal(t, title, req.Title)
}

func TestAcceptOffer_HappyPath(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	offerRepo := new(MockOfferRepository)
	svc := newRequestService(reqRepo, offerRepo, new(MockNegotiationRepository), new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusOpen,
	}, nil)
	offerRepo.On("FindByID", mock.Anything, uint64(10)).Return(&model.Offer{
		ID: 10, RequestID: 1, OffererUID: "p3", Status: model.OfferStatusPending, Price: floatPtr(9),
	}, nil)
	reqRepo.On("AcceptOffer", mock.Anything, uint64(1), uint64(10)).Return(&model.Negotiation{
		ID: 5, RequestID: 1, OfferID: 10, RequesterUID: "p1", OffererUID: "p3",
		Status: model.NegotiationStatusInProgress,
	}, nil)

	neg, err := svc.AcceptOffer(context.Background(), 1, 10, "p1")
	assert.NoError(t, err)
	assert.Equal(t, model.NegotiationStatusInProgress, neg.Status)
	reqRepo.AssertExpectations(t)
}

func TestAcceptOffer_NonPendingOffer(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	offerRepo := new(MockOfferRepository)
	svc := newRequestService(reqRepo, offerRepo, new(MockNegotiationRepository), new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusOpen,
	}, nil)
	offerRepo.On("FindByID", mock.Anything, uint64(10)).Return(&model.Offer{
		ID: 10, RequestID: 1, OffererUID: "p3", Status: model.OfferStatusWithdrawn,
	}, nil)

	_, err := svc.AcceptOffer(context.Background(), 1, 10, "p1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestComplete_RequesterAlwaysForbidden(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	negRepo := new(MockNegotiationRepository)
	svc := newRequestService(reqRepo, new(MockOfferRepository), negRepo, new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusAccepted,
	}, nil)

	_, err := svc.Complete(context.Background(), 1, "p1")
	assert.ErrorIs(t, err, ErrForbidden)
	negRepo.AssertNotCalled(t, "FindByRequest", mock.Anything, mock.Anything)
}

func TestComplete_BeforeAgreement(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	negRepo := new(MockNegotiationRepository)
	svc := newRequestService(reqRepo, new(MockOfferRepository), negRepo, new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusInNegotiation,
	}, nil)
	negRepo.On("FindByRequest", mock.Anything, uint64(1)).Return(&model.Negotiation{
		ID: 5, RequestID: 1, RequesterUID: "p1", OffererUID: "p3",
		Status: model.NegotiationStatusInProgress,
	}, nil)

	_, err := svc.Complete(context.Background(), 1, "p3")
	assert.ErrorIs(t, err, ErrNotAgreed)
}

func TestComplete_HappyThenIdempotentFailure(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	negRepo := new(MockNegotiationRepository)
	svc := newRequestService(reqRepo, new(MockOfferRepository), negRepo, new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusAccepted,
	}, nil).Once()
	negRepo.On("FindByRequest", mock.Anything, uint64(1)).Return(&model.Negotiation{
		ID: 5, RequestID: 1, RequesterUID: "p1", OffererUID: "p3",
		Status: model.NegotiationStatusAgreed,
	}, nil)
	reqRepo.On("CompleteIfAccepted", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusCompleted,
	}, nil).Once()

	req, err := svc.Complete(context.Background(), 1, "p3")
	assert.NoError(t, err)
	assert.Equal(t, model.RequestStatusCompleted, req.Status)

	// Second call: the request already left ACCEPTED.
	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusCompleted,
	}, nil).Once()
	reqRepo.On("CompleteIfAccepted", mock.Anything, uint64(1)).Return(nil, repository.ErrStaleState).Once()

	_, err = svc.Complete(context.Background(), 1, "p3")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel_OnlyWhileOpen(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	svc := newRequestService(reqRepo, new(MockOfferRepository), new(MockNegotiationRepository), new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusInNegotiation,
	}, nil)
	reqRepo.On("CancelIfOpen", mock.Anything, uint64(1)).Return(nil, repository.ErrStaleState)

	_, err := svc.Cancel(context.Background(), 1, "p1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDelete_OnlyRequesterAndOnlyOpenOrCancelled(t *testing.T) {
	reqRepo := new(MockRequestRepository)
	svc := newRequestService(reqRepo, new(MockOfferRepository), new(MockNegotiationRepository), new(MockItemRepository))

	reqRepo.On("FindByID", mock.Anything, uint64(1)).Return(&model.Request{
		ID: 1, RequesterUID: "p1", Status: model.RequestStatusInNegotiation,
	}, nil)

	err := svc.Delete(context.Background(), 1, "p2")
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(context.Background(), 1, "p1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
