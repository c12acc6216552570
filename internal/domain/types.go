package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type LocationID = uuid.UUID
type SessionID = uuid.UUID

type Category string

const (
	CategoryLibrary Category = "library"
	CategoryCafe    Category = "cafe"
	CategoryGym     Category = "gym"
	CategoryStudy   Category = "study"
	CategoryLounge  Category = "lounge"
	CategoryOther   Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryLibrary, CategoryCafe, CategoryGym, CategoryStudy, CategoryLounge, CategoryOther:
		return true
	}
	return false
}

type Mode string

const (
	ModeSolo  Mode = "solo"
	ModeGroup Mode = "group"
	ModeGhost Mode = "ghost"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeSolo, ModeGroup, ModeGhost:
		return true
	}
	return false
}

type NoiseSource string

const (
	NoiseSourceManual NoiseSource = "manual"
	NoiseSourceAuto   NoiseSource = "auto"
)
