package models

import (
	"time"
)

// MaxMessageLength bounds the text of a single warble.
const MaxMessageLength = 140

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:varchar(140);not null" json:"text"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	//Foreign Key Relationship
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
}
