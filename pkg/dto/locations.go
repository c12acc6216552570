package dto

import "time"

type Amenities struct {
	Wifi       bool `json:"wifi"`
	Outlets    bool `json:"outlets"`
	Food       bool `json:"food"`
	Whiteboard bool `json:"whiteboard"`
}

type LocationView struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Capacity       int       `json:"capacity"`
	Occupancy      int       `json:"occupancy"`
	OccupancyRatio float64   `json:"occupancyRatio"`
	Amenities      Amenities `json:"amenities"`
	Description    string    `json:"description,omitempty"`
}

type NoiseSummary struct {
	AverageLevel  float64 `json:"averageLevel"`
	Samples       int64   `json:"samples"`
	WindowMinutes int     `json:"windowMinutes"`
}

type LocationDetailsResponse struct {
	Location     LocationView `json:"location"`
	Noise        NoiseSummary `json:"noise"`
	ActiveGhosts int64        `json:"activeGhosts"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}

type LocationListResponse struct {
	Locations []LocationView `json:"locations"`
}
