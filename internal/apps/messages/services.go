package messages

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxSubjectLength = 255

// MessageView is a message joined with both parties and the listing title.
type MessageView struct {
	ID             uuid.UUID  `json:"id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	ReceiverID     uuid.UUID  `json:"receiver_id"`
	PropertyID     *uuid.UUID `json:"property_id"`
	Subject        string     `json:"subject"`
	Body           string     `json:"message"`
	CreatedAt      time.Time  `json:"created_at"`
	SenderName     string     `json:"sender_name"`
	SenderEmail    string     `json:"sender_email"`
	SenderAvatar   string     `json:"sender_avatar"`
	ReceiverName   string     `json:"receiver_name"`
	ReceiverEmail  string     `json:"receiver_email"`
	ReceiverAvatar string     `json:"receiver_avatar"`
	PropertyTitle  *string    `json:"property_title"`
}

type MessageService struct {
	db     *gorm.DB
	filter *services.ContentFilter
	events events.Publisher
}

func NewMessageService(db *gorm.DB, filter *services.ContentFilter, publisher events.Publisher) *MessageService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &MessageService{db: db, filter: filter, events: publisher}
}

// Send appends a message from senderID to receiverID, optionally about a
// listing.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, listingID *uuid.UUID, subject, body string) (*models.Message, error) {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)

	switch {
	case receiverID == uuid.Nil:
		return nil, apperr.Validation("Receiver is required")
	case receiverID == senderID:
		return nil, apperr.Validation("Can't send a message to yourself")
	case body == "":
		return nil, apperr.Validation("Message is required")
	case len(subject) > maxSubjectLength:
		return nil, apperr.Validation("Subject must be at most 255 characters")
	}

	for _, text := range []string{subject, body} {
		if ok, reason := s.filter.Check(text); !ok {
			return nil, apperr.Validation(s.filter.RejectionMessage(reason))
		}
	}

	db := s.db.WithContext(ctx)
	if err := exists(db, &models.User{}, receiverID, "Receiver not found"); err != nil {
		return nil, err
	}
	if listingID != nil {
		if err := exists(db, &models.Property{}, *listingID, "Property not found"); err != nil {
			return nil, err
		}
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		PropertyID: listingID,
		Subject:    subject,
		Body:       body,
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, apperr.FromDB(err, "Failed to send message")
	}

	evt := events.MessageSent{
		MessageID:  msg.ID.String(),
		SenderID:   senderID.String(),
		ReceiverID: receiverID.String(),
	}
	if listingID != nil {
		evt.ListingID = listingID.String()
	}
	if err := s.events.Publish(ctx, events.SubjectMessageSent, evt); err != nil {
		slog.Warn("event publish failed", "subject", events.SubjectMessageSent, "error", err)
	}

	return &msg, nil
}

// Inbox lists messages received by userID, newest first.
func (s *MessageService) Inbox(ctx context.Context, userID uuid.UUID, page database.Page) ([]MessageView, database.Pagination, error) {
	return s.list(ctx, "m.receiver_id = ?", userID, page)
}

// Sent lists messages sent by userID, newest first.
func (s *MessageService) Sent(ctx context.Context, userID uuid.UUID, page database.Page) ([]MessageView, database.Pagination, error) {
	return s.list(ctx, "m.sender_id = ?", userID, page)
}

func (s *MessageService) list(ctx context.Context, cond string, userID uuid.UUID, page database.Page) ([]MessageView, database.Pagination, error) {
	var total int64
	if err := s.db.WithContext(ctx).Table("messages AS m").Where(cond, userID).Count(&total).Error; err != nil {
		return nil, database.Pagination{}, apperr.Storage("Failed to count messages", err)
	}

	views := make([]MessageView, 0)
	err := s.db.WithContext(ctx).Table("messages AS m").
		Select("m.id, m.sender_id, m.receiver_id, m.property_id, m.subject, m.body, m.created_at, " +
			"sender.full_name AS sender_name, sender.email AS sender_email, sender.avatar_url AS sender_avatar, " +
			"receiver.full_name AS receiver_name, receiver.email AS receiver_email, receiver.avatar_url AS receiver_avatar, " +
			"p.title AS property_title").
		Joins("JOIN users sender ON sender.id = m.sender_id").
		Joins("JOIN users receiver ON receiver.id = m.receiver_id").
		Joins("LEFT JOIN properties p ON p.id = m.property_id").
		Where(cond, userID).
		Order("m.created_at DESC").
		Order("m.id").
		Scopes(database.Paginate(page)).
		Scan(&views).Error
	if err != nil {
		return nil, database.Pagination{}, apperr.Storage("Failed to list messages", err)
	}
	return views, page.Result(total), nil
}

func exists(db *gorm.DB, model interface{}, id uuid.UUID, notFound string) error {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.Storage("Failed to send message", err)
	}
	if n == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}
