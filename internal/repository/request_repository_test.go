package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Request{},
		&model.Offer{},
		&model.Negotiation{},
		&model.NegotiationMessage{},
	))
	return db
}

func seedRequest(t *testing.T, db *gorm.DB, suggested *float64, cur string) *model.Request {
	t.Helper()
	req := &model.Request{
		Title:          "Need brass ingots",
		Type:           model.RequestTypeGeneral,
		SuggestedPrice: suggested,
		Currency:       cur,
		Status:         model.RequestStatusOpen,
		RequesterUID:   "p1",
	}
	require.NoError(t, db.Create(req).Error)
	return req
}

func seedOffer(t *testing.T, db *gorm.DB, requestID uint64, offererUID string, price *float64, cur string, status model.OfferStatus) *model.Offer {
	t.Helper()
	o := &model.Offer{
		RequestID:  requestID,
		OffererUID: offererUID,
		Price:      price,
		Currency:   cur,
		Status:     status,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func price(v float64) *float64 { return &v }

func TestAcceptOffer_RejectsSiblingsAndCapturesTerms(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db, price(12), "emerald_block")
	o1 := seedOffer(t, db, req.ID, "p2", nil, "emerald", model.OfferStatusPending)
	o2 := seedOffer(t, db, req.ID, "p3", price(9), "emerald", model.OfferStatusPending)

	neg, err := repo.AcceptOffer(ctx, req.ID, o2.ID)
	require.NoError(t, err)

	var got model.Request
	require.NoError(t, db.First(&got, req.ID).Error)
	assert.Equal(t, model.RequestStatusInNegotiation, got.Status)

	var accepted, rejected model.Offer
	require.NoError(t, db.First(&accepted, o2.ID).Error)
	require.NoError(t, db.First(&rejected, o1.ID).Error)
	assert.Equal(t, model.OfferStatusAccepted, accepted.Status)
	assert.Equal(t, model.OfferStatusRejected, rejected.Status)

	assert.Equal(t, model.NegotiationStatusInProgress, neg.Status)
	assert.Equal(t, "p1", neg.RequesterUID)
	assert.Equal(t, "p3", neg.OffererUID)
	assert.Equal(t, 9.0, *neg.BasePrice)
	assert.Equal(t, "emerald", neg.BaseCurrency)
	assert.Equal(t, 9.0, *neg.CurrentPrice)

	var msgCount int64
	require.NoError(t, db.Model(&model.NegotiationMessage{}).
		Where("negotiation_id = ?", neg.ID).Count(&msgCount).Error)
	assert.Zero(t, msgCount)
}

func TestAcceptOffer_FallsBackToSuggestedTerms(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)

	req := seedRequest(t, db, price(12), "emerald_block")
	o := seedOffer(t, db, req.ID, "p2", nil, "emerald", model.OfferStatusPending)

	neg, err := repo.AcceptOffer(context.Background(), req.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, *neg.BasePrice)
	assert.Equal(t, "emerald_block", neg.BaseCurrency)
	assert.Equal(t, 12.0, *neg.CurrentPrice)
	assert.Equal(t, "emerald_block", neg.CurrentCurrency)
}

func TestAcceptOffer_SecondAcceptLoses(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db, price(12), "emerald")
	o1 := seedOffer(t, db, req.ID, "p2", price(10), "emerald", model.OfferStatusPending)
	o2 := seedOffer(t, db, req.ID, "p3", price(9), "emerald", model.OfferStatusPending)

	_, err := repo.AcceptOffer(ctx, req.ID, o1.ID)
	require.NoError(t, err)

	_, err = repo.AcceptOffer(ctx, req.ID, o2.ID)
	assert.ErrorIs(t, err, ErrStaleState)

	var negCount int64
	require.NoError(t, db.Model(&model.Negotiation{}).
		Where("request_id = ?", req.ID).Count(&negCount).Error)
	assert.Equal(t, int64(1), negCount)
}

func TestAcceptOffer_WithdrawnOfferRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)

	req := seedRequest(t, db, price(12), "emerald")
	o := seedOffer(t, db, req.ID, "p2", price(10), "emerald", model.OfferStatusWithdrawn)

	_, err := repo.AcceptOffer(context.Background(), req.ID, o.ID)
	assert.ErrorIs(t, err, ErrStaleOffer)

	// The whole transaction rolled back: the request is still on the board.
	var got model.Request
	require.NoError(t, db.First(&got, req.ID).Error)
	assert.Equal(t, model.RequestStatusOpen, got.Status)

	var negCount int64
	require.NoError(t, db.Model(&model.Negotiation{}).
		Where("request_id = ?", req.ID).Count(&negCount).Error)
	assert.Zero(t, negCount)
}

func TestCompleteIfAccepted_Conditional(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db, price(12), "emerald")
	require.NoError(t, db.Model(&model.Request{}).
		Where("id = ?", req.ID).
		Update("status", model.RequestStatusAccepted).Error)

	got, err := repo.CompleteIfAccepted(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	_, err = repo.CompleteIfAccepted(ctx, req.ID)
	assert.ErrorIs(t, err, ErrStaleState)
}

func TestCancelIfOpen_Conditional(t *testing.T) {
	db := newTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	req := seedRequest(t, db, price(12), "emerald")

	got, err := repo.CancelIfOpen(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, got.Status)

	_, err = repo.CancelIfOpen(ctx, req.ID)
	assert.ErrorIs(t, err, ErrStaleState)
}
