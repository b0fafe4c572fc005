package repository

import (
	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// AddLike and RemoveLike are deliberately plain primitives; deciding between
// them for a toggle is the caller's job.
func (r *LikeRepository) AddLike(userID, messageID uint) error {
	return r.db.Create(&models.Like{
		UserID:    userID,
		MessageID: messageID,
	}).Error
}

func (r *LikeRepository) RemoveLike(userID, messageID uint) error {
	return r.db.
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{}).Error
}

func (r *LikeRepository) Exists(userID, messageID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error

	return count > 0, err
}

// GetLikedMessages returns the messages a user has liked, newest like first.
func (r *LikeRepository) GetLikedMessages(userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Preload("User").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC").
		Find(&messages).Error

	return messages, err
}

func (r *LikeRepository) CountUserLikes(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *LikeRepository) CountMessageLikes(messageID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("message_id = ?", messageID).Count(&count).Error
	return count, err
}
