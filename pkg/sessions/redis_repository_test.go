package sessions

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(now time.Time) Session {
	return Session{
		ID:           uuid.MustParse("0b6f3c7e-3a2d-4f57-9d1b-7d0f1c1e2a3b"),
		UserID:       uuid.MustParse("6f1c2e43-4f0e-4d36-9a3e-2f1f6f4f8a10"),
		RefreshToken: "refresh-1",
		CreatedAt:    now,
		RefreshedAt:  now,
		ExpiresAt:    now.Add(time.Hour),
	}
}

func TestRedisRepository_Save(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := NewRedisRepository(client)
	repo.now = func() time.Time { return now }

	session := testSession(now)
	data, err := json.Marshal(session)
	require.NoError(t, err)

	mock.ExpectSet("skycast:session:"+session.ID.String(), data, time.Hour).SetVal("OK")
	mock.ExpectSet("skycast:refresh:refresh-1", session.ID.String(), time.Hour).SetVal("OK")

	require.NoError(t, repo.Save(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepository_SaveExpired(t *testing.T) {
	client, _ := redismock.NewClientMock()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := NewRedisRepository(client)
	repo.now = func() time.Time { return now.Add(2 * time.Hour) }

	assert.ErrorIs(t, repo.Save(context.Background(), testSession(now)), ErrSessionExpired)
}

func TestRedisRepository_GetByRefreshToken(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := NewRedisRepository(client)

	session := testSession(now)
	data, err := json.Marshal(session)
	require.NoError(t, err)

	mock.ExpectGet("skycast:refresh:refresh-1").SetVal(session.ID.String())
	mock.ExpectGet("skycast:session:" + session.ID.String()).SetVal(string(data))
	mock.ExpectGet("skycast:refresh:unknown").RedisNil()

	got, err := repo.GetByRefreshToken(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, session.UserID, got.UserID)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	_, err = repo.GetByRefreshToken(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepository_Delete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := NewRedisRepository(client)

	session := testSession(now)
	data, err := json.Marshal(session)
	require.NoError(t, err)
	sessionKey := "skycast:session:" + session.ID.String()

	mock.ExpectGet(sessionKey).SetVal(string(data))
	mock.ExpectDel(sessionKey, "skycast:refresh:refresh-1").SetVal(2)
	mock.ExpectGet("skycast:session:" + uuid.Nil.String()).RedisNil()

	require.NoError(t, repo.Delete(context.Background(), session.ID))
	require.NoError(t, repo.Delete(context.Background(), uuid.Nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRepository_RevokeRefreshToken(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewRedisRepository(client)

	mock.ExpectDel("skycast:refresh:refresh-1").SetVal(1)
	mock.ExpectDel("skycast:refresh:refresh-1").SetVal(0)

	require.NoError(t, repo.RevokeRefreshToken(context.Background(), "refresh-1"))
	assert.ErrorIs(t, repo.RevokeRefreshToken(context.Background(), "refresh-1"), ErrRefreshTokenReused)
	assert.NoError(t, mock.ExpectationsWereMet())
}
