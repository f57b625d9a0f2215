// Package domain contains core concepts of the chat system.
// This file defines Message and the visibility rule.
// Messages are immutable and validated at the storage boundary.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat message.
// Receiver is either the public room identifier or one concrete username.
type Message struct {
	ID       uuid.UUID
	Sender   string
	Receiver string
	Body     string
	At       time.Time
}

// IsVisible decides whether viewer may see the message.
// The exact same rule backs both the history backfill and the live feed;
// keep it here and nowhere else.
func IsVisible(m Message, room, viewer string) bool {
	return m.Receiver == room || m.Receiver == viewer
}
