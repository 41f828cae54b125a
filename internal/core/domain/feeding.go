package domain

import "time"

// FeedingRecord is one append-only audit row, written on every feed that
// consumed quota. Used for anti-abuse analysis; never mutated.
type FeedingRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FishID    string    `json:"fish_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
