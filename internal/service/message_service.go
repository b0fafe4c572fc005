package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/warblerhq/warbler/internal/broker"
	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/repository"
	"github.com/warblerhq/warbler/pkg/logger"
)

var (
	ErrTextRequired    = errors.New("message text is required")
	ErrTextTooLong     = errors.New("message text must be at most 140 characters")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotMessageOwner = errors.New("not authorized to delete this message")
)

// TimelineLimit caps the home feed.
const TimelineLimit = 100

type MessageService struct {
	messageRepo *repository.MessageRepository
	followRepo  *repository.FollowRepository
	likeRepo    *repository.LikeRepository
	broker      broker.WarbleBroker
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	followRepo *repository.FollowRepository,
	likeRepo *repository.LikeRepository,
	warbleBroker broker.WarbleBroker,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		broker:      warbleBroker,
	}
}

// CreateMessage validates, inserts and announces a new warble. The broker
// publish is best effort; a live feed miss must not lose the write.
func (s *MessageService) CreateMessage(userID uint, username, text string) (*models.Message, error) {
	if text == "" {
		return nil, ErrTextRequired
	}
	if len(text) > models.MaxMessageLength {
		return nil, ErrTextTooLong
	}

	msg := &models.Message{
		Text:      text,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.messageRepo.CreateMessage(msg); err != nil {
		logger.Log.Error("Failed to create message",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	if s.broker != nil {
		warble := broker.Warble{
			MessageID: msg.ID,
			UserID:    userID,
			Username:  username,
			Text:      text,
			Timestamp: msg.CreatedAt.Format(time.RFC3339),
		}
		if err := s.broker.Publish(warble); err != nil {
			logger.Log.Warn("Failed to publish warble to feed",
				zap.Uint("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}

	logger.Log.Info("Message created",
		zap.Uint("message_id", msg.ID),
		zap.Uint("user_id", userID),
	)

	return msg, nil
}

func (s *MessageService) GetMessage(id uint) (*models.Message, error) {
	return s.messageRepo.GetMessageByID(id)
}

func (s *MessageService) UserMessages(userID uint) ([]models.Message, error) {
	return s.messageRepo.GetUserMessages(userID)
}

// Timeline returns the newest warbles from the user and everyone they
// follow.
func (s *MessageService) Timeline(userID uint) ([]models.Message, error) {
	following, err := s.followRepo.GetFollowing(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(following)+1)
	ids = append(ids, userID)
	for _, u := range following {
		ids = append(ids, u.ID)
	}

	return s.messageRepo.GetTimeline(ids, TimelineLimit)
}

// RecentMessages is the anonymous home feed.
func (s *MessageService) RecentMessages(limit int) ([]models.Message, error) {
	return s.messageRepo.GetRecentMessages(limit)
}

// DeleteMessage removes a message. The ownership check runs before the
// delete, never after.
func (s *MessageService) DeleteMessage(messageID, requestingUserID uint) error {
	msg, err := s.messageRepo.GetMessageByID(messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.UserID != requestingUserID {
		logger.Log.Warn("Delete rejected: requester does not own message",
			zap.Uint("message_id", messageID),
			zap.Uint("owner_id", msg.UserID),
			zap.Uint("requester_id", requestingUserID),
		)
		return ErrNotMessageOwner
	}

	if err := s.messageRepo.DeleteMessage(messageID); err != nil {
		return err
	}

	logger.Log.Info("Message deleted",
		zap.Uint("message_id", messageID),
		zap.Uint("user_id", requestingUserID),
	)
	return nil
}

// ToggleLike flips the like edge for a user/message pair and reports the
// resulting state. The add/remove primitives live in the repository; the
// state check that picks between them happens here, on behalf of the view.
func (s *MessageService) ToggleLike(userID, messageID uint) (liked bool, err error) {
	msg, err := s.messageRepo.GetMessageByID(messageID)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, ErrMessageNotFound
	}

	exists, err := s.likeRepo.Exists(userID, messageID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.likeRepo.RemoveLike(userID, messageID); err != nil {
			return false, err
		}
		logger.Log.Info("Like removed",
			zap.Uint("user_id", userID),
			zap.Uint("message_id", messageID),
		)
		return false, nil
	}

	if err := s.likeRepo.AddLike(userID, messageID); err != nil {
		return false, err
	}
	logger.Log.Info("Like added",
		zap.Uint("user_id", userID),
		zap.Uint("message_id", messageID),
	)
	return true, nil
}

func (s *MessageService) LikedMessages(userID uint) ([]models.Message, error) {
	return s.likeRepo.GetLikedMessages(userID)
}

// HasLiked reports whether the user currently likes the message.
func (s *MessageService) HasLiked(userID, messageID uint) (bool, error) {
	return s.likeRepo.Exists(userID, messageID)
}
