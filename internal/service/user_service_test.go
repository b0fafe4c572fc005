package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/repository"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/testutil"
	"github.com/warblerhq/warbler/pkg/logger"
)

type UserServiceTestSuite struct {
	suite.Suite
	testDB      *testutil.TestDatabase
	userService *service.UserService
	u1          *models.User
	u2          *models.User
}

func (s *UserServiceTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())

	userRepo := repository.NewUserRepository(s.testDB.DB)
	followRepo := repository.NewFollowRepository(s.testDB.DB)
	messageRepo := repository.NewMessageRepository(s.testDB.DB)
	likeRepo := repository.NewLikeRepository(s.testDB.DB)

	s.userService = service.NewUserService(userRepo, followRepo, messageRepo, likeRepo)
}

func (s *UserServiceTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *UserServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	u1, err := testutil.CreateTestUser("Spongebob", "sponge@bikini-bottom.com", "password")
	require.NoError(s.T(), err)
	u2, err := testutil.CreateTestUser("Patrick", "pat@bikini-bottom.com", "password2")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.testDB.DB.Create(u1).Error)
	require.NoError(s.T(), s.testDB.DB.Create(u2).Error)

	s.u1 = u1
	s.u2 = u2
}

func (s *UserServiceTestSuite) TestFollowCreatesDirectedEdge() {
	require.NoError(s.T(), s.userService.Follow(s.u1.ID, s.u2.ID))

	following, err := s.userService.Following(s.u1.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), following, 1)
	assert.Equal(s.T(), s.u2.ID, following[0].ID)

	followers, err := s.userService.Followers(s.u2.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), followers, 1)
	assert.Equal(s.T(), s.u1.ID, followers[0].ID)

	// The edge is directed: the reverse relations stay empty
	reverseFollowing, err := s.userService.Following(s.u2.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), reverseFollowing)

	reverseFollowers, err := s.userService.Followers(s.u1.ID)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), reverseFollowers)
}

func (s *UserServiceTestSuite) TestIsFollowing() {
	require.NoError(s.T(), s.userService.Follow(s.u1.ID, s.u2.ID))

	following, err := s.userService.IsFollowing(s.u1.ID, s.u2.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), following)

	following, err = s.userService.IsFollowing(s.u2.ID, s.u1.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), following)
}

func (s *UserServiceTestSuite) TestIsFollowedBy() {
	require.NoError(s.T(), s.userService.Follow(s.u1.ID, s.u2.ID))

	followed, err := s.userService.IsFollowedBy(s.u2.ID, s.u1.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), followed)

	followed, err = s.userService.IsFollowedBy(s.u1.ID, s.u2.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), followed)
}

func (s *UserServiceTestSuite) TestFollowUnknownTarget() {
	err := s.userService.Follow(s.u1.ID, 999999)
	assert.ErrorIs(s.T(), err, service.ErrUserNotFound)
}

func (s *UserServiceTestSuite) TestUnfollowRemovesEdge() {
	require.NoError(s.T(), s.userService.Follow(s.u1.ID, s.u2.ID))
	require.NoError(s.T(), s.userService.Unfollow(s.u1.ID, s.u2.ID))

	following, err := s.userService.IsFollowing(s.u1.ID, s.u2.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), following)
}

func (s *UserServiceTestSuite) TestProfileStats() {
	// u1: one message, follows u2, one like; u2 follows u1 back
	msg := testutil.CreateTestMessage(s.u2.ID, "Aw geez...")
	require.NoError(s.T(), s.testDB.DB.Create(msg).Error)
	own := testutil.CreateTestMessage(s.u1.ID, "I'm ready. I'm ready. I'm ready.")
	require.NoError(s.T(), s.testDB.DB.Create(own).Error)

	require.NoError(s.T(), s.userService.Follow(s.u1.ID, s.u2.ID))
	require.NoError(s.T(), s.userService.Follow(s.u2.ID, s.u1.ID))
	require.NoError(s.T(), s.testDB.DB.Create(testutil.CreateTestLike(s.u1.ID, msg.ID)).Error)

	stats, err := s.userService.GetProfileStats(s.u1.ID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), int64(1), stats.Messages)
	assert.Equal(s.T(), int64(1), stats.Following)
	assert.Equal(s.T(), int64(1), stats.Followers)
	assert.Equal(s.T(), int64(1), stats.Likes)
}

func (s *UserServiceTestSuite) TestSearchSubstring() {
	for _, u := range []struct{ username, email string }{
		{"MortySmith", "morty@example.com"},
		{"SummerSmith", "summer@example.com"},
		{"RickSanchez", "rick@example.com"},
	} {
		user, err := testutil.CreateTestUser(u.username, u.email, "password123")
		require.NoError(s.T(), err)
		require.NoError(s.T(), s.testDB.DB.Create(user).Error)
	}

	users, err := s.userService.Search("Smith")
	require.NoError(s.T(), err)

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}

	assert.Contains(s.T(), names, "MortySmith")
	assert.Contains(s.T(), names, "SummerSmith")
	assert.NotContains(s.T(), names, "RickSanchez")
}

func (s *UserServiceTestSuite) TestSearchEmptyTermReturnsAll() {
	users, err := s.userService.Search("")
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 2)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
