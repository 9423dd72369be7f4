package activity

import (
	"context"
	"time"
)

// StatsRequest is the request for the activity-stats service.
type StatsRequest struct{}

// StatsResponse summarizes the activity ring.
type StatsResponse struct {
	Entries  int        `json:"entries"`
	Capacity int        `json:"capacity"`
	LastType string     `json:"last_type,omitempty"`
	LastAt   *time.Time `json:"last_at,omitempty"`
}

// ActivityPort defines the interface for reading activity state from
// other modules.
type ActivityPort interface {
	Stats(ctx context.Context) (*StatsResponse, error)
}
