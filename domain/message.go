// Package domain contains core concepts of the chat system.
// This file defines Message records exchanged between two users.
// Messages are immutable once created, except for the read flag.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Content carries the message body. At least one of Text or Image
// (a media store URL) must be set.
type Content struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

func (c Content) Empty() bool {
	return c.Text == "" && c.Image == ""
}

// Message is a single chat record between a sender and a receiver.
type Message struct {
	ID        uuid.UUID `json:"_id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   Content   `json:"content"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
