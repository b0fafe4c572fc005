package main

import (
	"log"

	"github.com/warblerhq/warbler/internal/config"
	"github.com/warblerhq/warbler/internal/database"
	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/utils"
)

// Seeds a development database with a few users, follows and warbles.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	users := []struct {
		username string
		email    string
		password string
		bio      string
	}{
		{"tuckerdiane", "tuckerdiane@example.com", "password", "Amazed at how far birds can fly."},
		{"ridleyweber", "ridley@example.com", "password", ""},
		{"quincyjo", "quincy@example.com", "password", "Warbling since day one."},
	}

	created := make([]*models.User, 0, len(users))
	for _, u := range users {
		hash, err := utils.HashPassword(u.password)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		user := &models.User{
			Username:       u.username,
			Email:          u.email,
			PasswordHash:   hash,
			ImageURL:       models.DefaultImageURL,
			HeaderImageURL: models.DefaultHeaderImageURL,
			Bio:            u.bio,
		}
		if err := database.DB.Create(user).Error; err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.username, err)
		}
		created = append(created, user)
	}

	messages := []models.Message{
		{Text: "Just saw a cedar waxwing. Unreal.", UserID: created[0].ID},
		{Text: "Morning chorus was loud today.", UserID: created[1].ID},
		{Text: "Does anyone else keep a life list?", UserID: created[2].ID},
	}
	for i := range messages {
		if err := database.DB.Create(&messages[i]).Error; err != nil {
			log.Fatalf("Failed to seed message: %v", err)
		}
	}

	follows := []models.Follow{
		{FollowerID: created[0].ID, FollowedID: created[1].ID},
		{FollowerID: created[1].ID, FollowedID: created[0].ID},
		{FollowerID: created[2].ID, FollowedID: created[0].ID},
	}
	for i := range follows {
		if err := database.DB.Create(&follows[i]).Error; err != nil {
			log.Fatalf("Failed to seed follow: %v", err)
		}
	}

	likes := []models.Like{
		{UserID: created[0].ID, MessageID: messages[1].ID},
		{UserID: created[2].ID, MessageID: messages[0].ID},
	}
	for i := range likes {
		if err := database.DB.Create(&likes[i]).Error; err != nil {
			log.Fatalf("Failed to seed like: %v", err)
		}
	}

	log.Printf("Seeded %d users, %d messages, %d follows, %d likes",
		len(created), len(messages), len(follows), len(likes))
}
