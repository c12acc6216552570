package dto

import "time"

type CheckInRequest struct {
	LocationID      string   `json:"locationId"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Subject         *string  `json:"subject,omitempty"`
	Mode            string   `json:"mode,omitempty"`
	PlannedDuration *int     `json:"plannedDuration,omitempty"`
}

type CheckInResponse struct {
	SessionID   string    `json:"sessionId"`
	CheckedInAt time.Time `json:"checkedInAt"`
	GhostName   *string   `json:"ghostName"`
	CoinsEarned int       `json:"coinsEarned"`
}

type CheckOutRequest struct {
	NoiseLevel       *int    `json:"noiseLevel,omitempty"`
	Temperature      *int    `json:"temperature,omitempty"`
	Crowdedness      *int    `json:"crowdedness,omitempty"`
	OutletsAvailable *bool   `json:"outletsAvailable,omitempty"`
	Rating           *int    `json:"rating,omitempty"`
	Feedback         *string `json:"feedback,omitempty"`
}

type CheckOutResponse struct {
	SessionID       string  `json:"sessionId"`
	DurationMinutes int     `json:"durationMinutes"`
	Hours           float64 `json:"hours"`
	TotalCoins      int     `json:"totalCoins"`
	BonusCoins      int     `json:"bonusCoins"`
}

type ActiveSession struct {
	SessionID        string    `json:"sessionId"`
	LocationID       string    `json:"locationId"`
	LocationName     string    `json:"locationName"`
	LocationCategory string    `json:"locationCategory"`
	Subject          *string   `json:"subject,omitempty"`
	Mode             string    `json:"mode"`
	GhostName        *string   `json:"ghostName,omitempty"`
	PlannedDuration  int       `json:"plannedDuration"`
	CoinsEarned      int       `json:"coinsEarned"`
	CheckedInAt      time.Time `json:"checkedInAt"`
	ElapsedMinutes   int       `json:"elapsedMinutes"`
}

type ActiveSessionResponse struct {
	Active  bool           `json:"active"`
	Session *ActiveSession `json:"session,omitempty"`
}

type SessionSummary struct {
	SessionID       string     `json:"sessionId"`
	LocationID      string     `json:"locationId"`
	LocationName    string     `json:"locationName"`
	Subject         *string    `json:"subject,omitempty"`
	Mode            string     `json:"mode"`
	Active          bool       `json:"active"`
	CheckedInAt     time.Time  `json:"checkedInAt"`
	CheckedOutAt    *time.Time `json:"checkedOutAt,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	CoinsEarned     int        `json:"coinsEarned"`
}

type HistoryResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

type UserStatsResponse struct {
	UserID          string     `json:"userId"`
	TotalCoins      int        `json:"totalCoins"`
	TotalHours      float64    `json:"totalHours"`
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	LastCheckInDate *time.Time `json:"lastCheckInDate,omitempty"`
}
