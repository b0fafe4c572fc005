package testutil

import (
	"time"

	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/utils"
)

// CreateTestUser builds a user with a real Argon2id password hash.
func CreateTestUser(username, email, password string) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hashedPassword,
		ImageURL:       models.DefaultImageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
		CreatedAt:      time.Now(),
	}, nil
}

// CreateTestMessage builds a message owned by the given user.
func CreateTestMessage(userID uint, text string) *models.Message {
	return &models.Message{
		Text:      text,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}

// CreateTestFollow builds a follower -> followed edge.
func CreateTestFollow(followerID, followedID uint) *models.Follow {
	return &models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now(),
	}
}

// CreateTestLike builds a user -> message like edge.
func CreateTestLike(userID, messageID uint) *models.Like {
	return &models.Like{
		UserID:    userID,
		MessageID: messageID,
		CreatedAt: time.Now(),
	}
}
