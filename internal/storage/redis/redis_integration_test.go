//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"wishlist/internal/lib/testutil/containers"
	"wishlist/internal/models"
	"wishlist/internal/storage"
)

type RedisRepoSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	repo  *RedisRepo
	ctx   context.Context
}

func TestRedisRepoSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRepoSuite))
}

func (s *RedisRepoSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())

	repo, err := New(s.ctx, s.redis.Addr, "", 0, time.Minute)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepoSuite) TearDownSuite() {
	s.repo.Close()
}

func (s *RedisRepoSuite) SetupTest() {
	s.Require().NoError(s.repo.client.FlushAll(s.ctx).Err())
}

func (s *RedisRepoSuite) TestCacheRoundTrip() {
	started := time.Now().Truncate(time.Second)
	s.Require().NoError(s.repo.CacheSession(s.ctx, models.Session{
		ID:        "S1",
		IPAddress: "10.0.0.7",
		Started:   started,
	}))

	got, err := s.repo.CachedSession(s.ctx, "S1")
	s.Require().NoError(err)
	s.Equal("S1", got.ID)
	s.Equal("10.0.0.7", got.IPAddress)
	s.True(started.Equal(got.Started))

	ttl, err := s.repo.client.TTL(s.ctx, sessionKey("S1")).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisRepoSuite) TestMiss() {
	_, err := s.repo.CachedSession(s.ctx, "missing")
	s.ErrorIs(err, storage.ErrSessionNotFound)
}

func (s *RedisRepoSuite) TestForget() {
	s.Require().NoError(s.repo.CacheSession(s.ctx, models.Session{ID: "S2", Started: time.Now()}))
	s.Require().NoError(s.repo.ForgetSession(s.ctx, "S2"))

	_, err := s.repo.CachedSession(s.ctx, "S2")
	s.ErrorIs(err, storage.ErrSessionNotFound)

	s.NoError(s.repo.ForgetSession(s.ctx, "never-cached"))
}
