package repository

import (
	"gorm.io/gorm"

	"github.com/warblerhq/warbler/internal/models"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// CreateFollow inserts the edge as-is. Duplicate and self-follow edges are
// not pre-checked here; the composite unique index is the only guard.
func (r *FollowRepository) CreateFollow(followerID, followedID uint) error {
	return r.db.Create(&models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
	}).Error
}

func (r *FollowRepository) DeleteFollow(followerID, followedID uint) error {
	return r.db.
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
}

// Exists reports whether follower follows followed.
func (r *FollowRepository) Exists(followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error

	return count > 0, err
}

// GetFollowing returns the users the given user follows.
func (r *FollowRepository) GetFollowing(userID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error

	return users, err
}

// GetFollowers returns the users following the given user.
func (r *FollowRepository) GetFollowers(userID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error

	return users, err
}

func (r *FollowRepository) CountFollowing(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *FollowRepository) CountFollowers(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&count).Error
	return count, err
}
