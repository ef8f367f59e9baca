// Package models contains the domain entities and the application error taxonomy.
package models

import "time"

// User is an account row. In local mode the ID is server-generated and the
// password hash is set; in federated mode the ID equals the identity
// provider's subject claim and the password column stays null.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  *string   `gorm:"column:password" json:"-"`
	FullName  *string   `gorm:"column:full_name" json:"full_name"`
	AvatarURL *string   `gorm:"column:avatar_url" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	Polls     []Poll    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"polls,omitempty"`
	Votes     []Vote    `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"votes,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
