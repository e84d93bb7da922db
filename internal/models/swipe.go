package models

import "time"

// SwipeAction is the direction of a swipe.
type SwipeAction string

const (
	SwipeLike SwipeAction = "like"
	SwipePass SwipeAction = "pass"
)

func (a SwipeAction) Valid() bool {
	return a == SwipeLike || a == SwipePass
}

// SwipeRecord is one swipe from a user toward a target.
type SwipeRecord struct {
	UserID   string      `db:"user_id" json:"userId"`
	TargetID string      `db:"target_id" json:"targetUserId"`
	Action   SwipeAction `db:"action" json:"action"`
	SwipedAt time.Time   `db:"swiped_at" json:"swipedAt"`
}

// SwipeResult is the outcome of recording a swipe.
type SwipeResult struct {
	IsMatch bool    `json:"isMatch"`
	ChatID  *string `json:"chatId"`
}

// CandidateFilter narrows discovery. Zero values mean "no constraint".
type CandidateFilter struct {
	MinAge          int
	MaxAge          int
	Skills          []string
	ExperienceLevel ExperienceLevel
	Location        string
	LookingFor      Intent
}
