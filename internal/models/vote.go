package models

import "time"

// Vote is a single admitted selection of time slots on a poll. UserID is set
// for authenticated voters and stays null for named or anonymous ones; the
// duplicate-detection identity is whichever of UserID/VoterName is present.
type Vote struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	VoterName         *string   `gorm:"column:voter_name;size:50" json:"voter_name"`
	UserID            *string   `gorm:"type:uuid;index" json:"user_id"`
	PollID            string    `gorm:"type:uuid;not null;index" json:"poll_id"`
	SelectedTimeSlots []string  `gorm:"serializer:json;not null" json:"selected_time_slots"`
	VotedAt           time.Time `gorm:"autoCreateTime" json:"voted_at"`
}

// TableName specifies the table name for GORM.
func (Vote) TableName() string {
	return "votes"
}
