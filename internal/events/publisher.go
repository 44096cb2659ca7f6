// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
)

const (
	SubjectListingCreated = "listings.created"
	SubjectListingDeleted = "listings.deleted"
	SubjectMessageSent    = "messages.sent"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

type NATS struct {
	conn *nats.Conn
}

func NewNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url, nats.Name("realestate-backend"))
	if err != nil {
		return nil, err
	}
	return &NATS{conn: conn}, nil
}

func (p *NATS) Publish(_ context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, payload)
}

// Close flushes pending messages and closes the connection.
func (p *NATS) Close() {
	_ = p.conn.Drain()
}

// Noop is used when no NATS URL is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

// Event is one recorded publish.
type Event struct {
	Subject string
	Data    any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, subject string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Subject: subject, Data: data})
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// ListingCreated is published after a listing commits.
type ListingCreated struct {
	ListingID  string `json:"listing_id"`
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title"`
	ImageCount int    `json:"image_count"`
}

type ListingDeleted struct {
	ListingID string `json:"listing_id"`
	OwnerID   string `json:"owner_id"`
}

type MessageSent struct {
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	ListingID  string `json:"listing_id,omitempty"`
}
