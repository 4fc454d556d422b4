// Package models defines the core data structures for the Yo-Yo Pizza assistant.
//
// It includes types for orders, profiles, and messaging events, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// Validation constants for the order dialog.
const (
	// MinAge is the youngest accepted age for an order.
	MinAge = 18
	// MaxAge is the oldest accepted age for an order.
	MaxAge = 120
)

// Error variables for better error handling and testability
var (
	ErrEmptyRecipient   = errors.New("recipient cannot be empty")
	ErrInvalidItem      = errors.New("item selection is not in the catalog")
	ErrEmptyName        = errors.New("name must contain at least one character")
	ErrAgeNotRecognized = errors.New("input could not be interpreted as an age")
	ErrAgeOutOfRange    = errors.New("age must be between 18 and 120")
	ErrIncompleteOrder  = errors.New("order is missing required fields")
)

// Order is the committed record of one completed dialog cycle.
// It is immutable after creation; the ID is assigned by the store at commit time.
type Order struct {
	ID         string    `json:"id"`
	ItemNumber int       `json:"item_number"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks that all slots collected by the dialog are present.
func (o *Order) Validate() error {
	if o.ItemNumber <= 0 || o.Name == "" || o.Address == "" {
		return ErrIncompleteOrder
	}
	if o.Age < MinAge || o.Age > MaxAge {
		return ErrAgeOutOfRange
	}
	return nil
}

// Profile holds the last-confirmed identity fields for a participant.
// It outlives any single order and is updated only when the name and age
// slots are accepted.
type Profile struct {
	ParticipantID string    `json:"participant_id"`
	Name          string    `json:"name,omitempty"`
	Age           int       `json:"age,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MessageStatus represents the delivery status of a message.
type MessageStatus string

const (
	// MessageStatusSent indicates the message was sent.
	MessageStatusSent MessageStatus = "sent"
	// MessageStatusDelivered indicates the message was delivered.
	MessageStatusDelivered MessageStatus = "delivered"
	// MessageStatusRead indicates the message was read.
	MessageStatusRead MessageStatus = "read"
	// MessageStatusFailed indicates the message failed to send.
	MessageStatusFailed MessageStatus = "failed"
)

// Receipt records the delivery status of an outbound message.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response represents an incoming message from a participant.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// JoinEvent fires once when a new participant joins the conversation channel.
type JoinEvent struct {
	ParticipantID string `json:"participant_id"`
	Time          int64  `json:"time"`
}
