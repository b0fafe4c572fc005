package models

import (
	"time"
)

// DefaultImageURL is the profile image applied at signup when none is given.
const DefaultImageURL = "/static/images/default-pic.png"

// DefaultHeaderImageURL is the profile header applied when none is given.
const DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"

type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email          string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash   string `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	ImageURL       string `gorm:"type:text" json:"image_url"`
	HeaderImageURL string `gorm:"type:text" json:"header_image_url"`
	Bio            string `gorm:"type:text" json:"bio"`
	Location       string `gorm:"type:varchar(100)" json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
