package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration records one user's intent to attend one event.
// At most one row may exist per (user_id, event_id) pair.
type Registration struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	EventID   uuid.UUID `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RegistrationWithEvent joins a registration with its event for listing.
type RegistrationWithEvent struct {
	Registration
	Event Event `json:"event"`
}
