package messages

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	events  *events.Recorder
	service *MessageService
	buyer   *models.User
	seller  *models.User
	listing *models.Property
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	rec := &events.Recorder{}

	buyer := &models.User{Email: "buyer@example.com", FullName: "Bea Buyer", PasswordHash: "x", AvatarURL: "https://cdn.example.com/bea.png"}
	seller := &models.User{Email: "seller@example.com", FullName: "Sam Seller", PasswordHash: "x"}
	require.NoError(t, db.Create(buyer).Error)
	require.NoError(t, db.Create(seller).Error)

	listing := &models.Property{
		OwnerID:      seller.ID,
		Title:        "Lake house",
		PropertyType: "house",
		ListingType:  models.ListingSale,
		Price:        640000,
	}
	require.NoError(t, db.Create(listing).Error)

	return &fixture{
		db:      db,
		events:  rec,
		service: NewMessageService(db, services.NewContentFilter(), rec),
		buyer:   buyer,
		seller:  seller,
		listing: listing,
	}
}

func (f *fixture) messageCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Message{}).Count(&n).Error)
	return n
}

func TestSend_StoresMessageAndPublishes(t *testing.T) {
	f := newFixture(t)

	msg, err := f.service.Send(context.Background(), f.buyer.ID, f.seller.ID, &f.listing.ID, "Viewing", "  Is Saturday possible?  ")
	require.NoError(t, err)
	assert.Equal(t, "Is Saturday possible?", msg.Body)
	require.NotNil(t, msg.PropertyID)
	assert.Equal(t, f.listing.ID, *msg.PropertyID)
	assert.Equal(t, int64(1), f.messageCount(t))

	evts := f.events.Events()
	require.Len(t, evts, 1)
	assert.Equal(t, events.SubjectMessageSent, evts[0].Subject)
}

func TestSend_Rejections(t *testing.T) {
	f := newFixture(t)
	unknownListing := uuid.New()

	tests := []struct {
		name     string
		receiver uuid.UUID
		listing  *uuid.UUID
		body     string
		kind     error
	}{
		{"to self", f.buyer.ID, nil, "hello", apperr.ErrValidation},
		{"unknown receiver", uuid.New(), nil, "hello", apperr.ErrNotFound},
		{"unknown listing", f.seller.ID, &unknownListing, "hello", apperr.ErrNotFound},
		{"empty body", f.seller.ID, nil, "   ", apperr.ErrValidation},
		{"abusive body", f.seller.ID, nil, "this is bullshit", apperr.ErrValidation},
		{"shouting", f.seller.ID, nil, "PLEASE ANSWER RIGHT AWAY TODAY", apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Send(context.Background(), f.buyer.ID, tt.receiver, tt.listing, "", tt.body)
			require.ErrorIs(t, err, tt.kind)
		})
	}

	assert.Zero(t, f.messageCount(t))
	assert.Empty(t, f.events.Events())
}

func TestInboxAndSent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Send(ctx, f.buyer.ID, f.seller.ID, &f.listing.ID, "First", "Is it still available?")
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Message{}).Where("subject = ?", "First").
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	_, err = f.service.Send(ctx, f.buyer.ID, f.seller.ID, nil, "Second", "Any news?")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, f.seller.ID, f.buyer.ID, nil, "Re: First", "Yes it is.")
	require.NoError(t, err)

	inbox, page, err := f.service.Inbox(ctx, f.seller.ID, database.NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, "Second", inbox[0].Subject)
	assert.Nil(t, inbox[0].PropertyTitle)
	assert.Equal(t, "First", inbox[1].Subject)
	require.NotNil(t, inbox[1].PropertyTitle)
	assert.Equal(t, "Lake house", *inbox[1].PropertyTitle)
	assert.Equal(t, "Bea Buyer", inbox[1].SenderName)
	assert.Equal(t, "https://cdn.example.com/bea.png", inbox[1].SenderAvatar)

	sent, _, err := f.service.Sent(ctx, f.seller.ID, database.NewPage(1, 20))
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "Bea Buyer", sent[0].ReceiverName)
	assert.Equal(t, "buyer@example.com", sent[0].ReceiverEmail)
}

func TestListingDeleteKeepsMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Send(ctx, f.buyer.ID, f.seller.ID, &f.listing.ID, "Offer", "Would you take 600k?")
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.Property{}, "id = ?", f.listing.ID).Error)

	var msg models.Message
	require.NoError(t, f.db.First(&msg).Error)
	assert.Nil(t, msg.PropertyID)
}
