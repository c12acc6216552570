package dto

import "time"

type GhostPresence struct {
	SessionID      string    `json:"sessionId"`
	GhostName      string    `json:"ghostName"`
	LocationID     string    `json:"locationId"`
	LocationName   string    `json:"locationName"`
	Subject        *string   `json:"subject,omitempty"`
	CheckedInAt    time.Time `json:"checkedInAt"`
	ElapsedMinutes int       `json:"elapsedMinutes"`
	Elapsed        string    `json:"elapsed"`
}

type GhostListResponse struct {
	Ghosts []GhostPresence `json:"ghosts"`
}

type EncouragementRequest struct {
	Emoji string `json:"emoji"`
}

type EncouragementResponse struct {
	OK     bool      `json:"ok"`
	Emoji  string    `json:"emoji"`
	SentAt time.Time `json:"sentAt"`
}

type EncouragementSummaryResponse struct {
	Active    bool             `json:"active"`
	SessionID string           `json:"sessionId,omitempty"`
	Counts    map[string]int64 `json:"counts"`
	Total     int64            `json:"total"`
}

type GhostSessionSummaryResponse struct {
	SessionID       string `json:"sessionId"`
	GhostName       string `json:"ghostName"`
	LocationName    string `json:"locationName"`
	DurationMinutes int    `json:"durationMinutes"`
	Duration        string `json:"duration"`
	Active          bool   `json:"active"`
	GhostsAlongside int64  `json:"ghostsAlongside"`
	Encouragements  int64  `json:"encouragements"`
}
