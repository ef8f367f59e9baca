package models

import "time"

// Poll is a scheduling poll. TimeSlots is the fixed universe of valid
// selections for every vote on the poll and is never updated after creation.
type Poll struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"column:image_url;type:text" json:"image_url"`
	TimeSlots   []string  `gorm:"serializer:json;not null" json:"time_slots"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Votes       []Vote    `gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE" json:"votes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Poll) TableName() string {
	return "polls"
}
