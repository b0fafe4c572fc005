package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/repository"
	"github.com/warblerhq/warbler/pkg/logger"
)

var ErrUserNotFound = errors.New("user not found")

// ProfileStats are derived from edge-set cardinality on every read; nothing
// is denormalized.
type ProfileStats struct {
	Messages  int64
	Following int64
	Followers int64
	Likes     int64
}

type UserService struct {
	userRepo    *repository.UserRepository
	followRepo  *repository.FollowRepository
	messageRepo *repository.MessageRepository
	likeRepo    *repository.LikeRepository
}

func NewUserService(
	userRepo *repository.UserRepository,
	followRepo *repository.FollowRepository,
	messageRepo *repository.MessageRepository,
	likeRepo *repository.LikeRepository,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
	}
}

func (s *UserService) GetUser(id uint) (*models.User, error) {
	return s.userRepo.GetUserByID(id)
}

// Search lists users whose username contains the term; an empty term lists
// everyone.
func (s *UserService) Search(term string) ([]*models.User, error) {
	users, err := s.userRepo.SearchUsers(term)
	if err != nil {
		logger.Log.Error("Failed to search users",
			zap.String("term", term),
			zap.Error(err),
		)
		return nil, err
	}
	return users, nil
}

// GetProfileStats computes the four profile counters for a user.
func (s *UserService) GetProfileStats(userID uint) (*ProfileStats, error) {
	messages, err := s.messageRepo.CountUserMessages(userID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.CountFollowers(userID)
	if err != nil {
		return nil, err
	}
	likes, err := s.likeRepo.CountUserLikes(userID)
	if err != nil {
		return nil, err
	}

	return &ProfileStats{
		Messages:  messages,
		Following: following,
		Followers: followers,
		Likes:     likes,
	}, nil
}

// Follow inserts the edge. The target must exist; beyond that the edge is
// taken as-is, with duplicates stopped only by the unique index.
func (s *UserService) Follow(followerID, targetID uint) error {
	target, err := s.userRepo.GetUserByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}

	if err := s.followRepo.CreateFollow(followerID, targetID); err != nil {
		logger.Log.Warn("Failed to create follow edge",
			zap.Uint("follower_id", followerID),
			zap.Uint("followed_id", targetID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Follow created",
		zap.Uint("follower_id", followerID),
		zap.Uint("followed_id", targetID),
	)
	return nil
}

func (s *UserService) Unfollow(followerID, targetID uint) error {
	if err := s.followRepo.DeleteFollow(followerID, targetID); err != nil {
		return err
	}

	logger.Log.Info("Follow removed",
		zap.Uint("follower_id", followerID),
		zap.Uint("followed_id", targetID),
	)
	return nil
}

// IsFollowing reports whether a follows b.
func (s *UserService) IsFollowing(a, b uint) (bool, error) {
	return s.followRepo.Exists(a, b)
}

// IsFollowedBy reports whether b follows a.
func (s *UserService) IsFollowedBy(a, b uint) (bool, error) {
	return s.followRepo.Exists(b, a)
}

func (s *UserService) Following(userID uint) ([]*models.User, error) {
	return s.followRepo.GetFollowing(userID)
}

func (s *UserService) Followers(userID uint) ([]*models.User, error) {
	return s.followRepo.GetFollowers(userID)
}

// DeleteAccount removes the user along with their messages and edges.
func (s *UserService) DeleteAccount(userID uint) error {
	if err := s.userRepo.DeleteUser(userID); err != nil {
		logger.Log.Error("Failed to delete account",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Account deleted",
		zap.Uint("user_id", userID),
	)
	return nil
}
