package events

import "time"

const (
	TopicOccupancyChanged = "occupancy.changed"
	TopicGhostsChanged    = "ghosts.changed"
)

type OccupancyChanged struct {
	LocationID string    `json:"locationId"`
	Occupancy  int       `json:"occupancy"`
	Capacity   int       `json:"capacity"`
	At         time.Time `json:"at"`
}

type GhostActivityChanged struct {
	LocationID string    `json:"locationId"`
	SessionID  string    `json:"sessionId"`
	GhostName  string    `json:"ghostName"`
	Action     string    `json:"action"` // "joined" or "left"
	At         time.Time `json:"at"`
}
