package models

import "time"

// ProgressTracking contains common fields for tracking background work
type ProgressTracking struct {
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`
	Progress       int       `json:"progress"`
	Error          string    `json:"error,omitempty"`
}
