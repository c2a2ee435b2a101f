package db

import "time"

// SubmissionClaim reserves one standup per user per day. The composite
// unique index is what makes the claim atomic.
type SubmissionClaim struct {
	ID        uint   `gorm:"primaryKey"`
	Date      string `gorm:"not null;uniqueIndex:ux_claim_date_user,priority:1"`
	Username  string `gorm:"not null;uniqueIndex:ux_claim_date_user,priority:2"`
	CreatedAt time.Time
}

// PromptDelivery is one member's outcome in a broadcast run.
type PromptDelivery struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index;not null"`
	UserID    string `gorm:"not null"`
	ChannelID string
	MessageTs string
	Error     string
	SentAt    time.Time
}
