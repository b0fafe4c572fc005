package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// GetMessageByID retrieves a message with its author preloaded.
func (r *MessageRepository) GetMessageByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("User").First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// GetUserMessages retrieves a user's messages, newest first.
func (r *MessageRepository) GetUserMessages(userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&messages).Error

	return messages, err
}

// GetTimeline retrieves the newest messages authored by any of the given
// users (the viewer plus everyone they follow).
func (r *MessageRepository) GetTimeline(userIDs []uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("User").
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error

	return messages, err
}

// GetRecentMessages retrieves the most recent messages across all users.
func (r *MessageRepository) GetRecentMessages(limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error

	return messages, err
}

func (r *MessageRepository) DeleteMessage(id uint) error {
	return r.db.Delete(&models.Message{}, id).Error
}

func (r *MessageRepository) CountUserMessages(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
