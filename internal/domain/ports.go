package domain

import (
	"context"
	"time"
)

// HotelAPI is the REST collaborator the editor page talks to.
type HotelAPI interface {
	// GetHotel reads GET /api/hotels/{id}, rooms included.
	GetHotel(ctx context.Context, id string) (HotelRecord, error)
	// UpdateHotel writes PUT /api/hotels/{id} with the full record as body.
	UpdateHotel(ctx context.Context, id string, h HotelRecord) error
}

// Cache stores loaded baselines between page events and holds submit locks.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	// SetNX stores v only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, v any, ttl time.Duration) (bool, error)
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(route string)
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a user-facing popup message.
type Notice struct {
	Kind  NoticeKind
	Title string
	Text  string
}

type Notifier interface {
	Notify(n Notice)
}
