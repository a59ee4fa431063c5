// pkg/core/session.go
package core

import "time"

// SessionInfo identifies one analysis session: a site plus the run
// parameters under which results were produced. Storage backends key
// persisted results by it.
type SessionInfo struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Mode      string    `json:"mode"` // "instant" or "daily"
	StartedAt time.Time `json:"startedAt"`
}
