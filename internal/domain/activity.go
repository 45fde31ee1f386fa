package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an entry of the activity feed
type ActivityType string

const (
	ActivityCreate ActivityType = "create"
	ActivityUpdate ActivityType = "update"
	ActivityDelete ActivityType = "delete"
	ActivitySell   ActivityType = "sell"
	ActivityRepair ActivityType = "repair"
)

// Activity is an entry of the dashboard activity feed
type Activity struct {
	ID        uuid.UUID    `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"createdAt"`
}
