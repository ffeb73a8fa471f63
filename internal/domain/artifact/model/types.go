package model

import (
	"errors"
	"time"

	"ico-builder-go/internal/domain/icon"
)

// ErrNotFound is returned for unknown and expired artifacts alike.
var ErrNotFound = errors.New("artifact not found")

// Record is a stored icon container.
type Record struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Data      []byte           `json:"data,omitempty"`
	Size      int64            `json:"size"`
	Entries   []icon.EntryInfo `json:"entries"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
}

// Expired reports whether the record is past its expiry at now.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// WithoutData returns a copy carrying metadata only.
func (r Record) WithoutData() Record {
	r.Data = nil
	return r
}
