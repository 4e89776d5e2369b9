package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	values map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	str, ok := value.(string)
	if !ok {
		return errors.New("unexpected value type")
	}
	s.values[key] = str
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

type stubKeyer struct{}

func (stubKeyer) AccessSessionKey(accessID string) string {
	return "test:session:" + accessID
}

func newTestManager(store *stubStore) *Manager {
	return &Manager{store: store, keyer: stubKeyer{}, ttl: time.Hour}
}

func TestGenerateAndHasSession(t *testing.T) {
	store := newStubStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := mgr.Generate(ctx, accessID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := mgr.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.HasSession(ctx, NewAccessID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRotateInvalidatesOldSession(t *testing.T) {
	store := newStubStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := mgr.Generate(ctx, accessID)
	require.NoError(t, err)

	newAccessID, newToken, err := mgr.Rotate(ctx, accessID, token)
	require.NoError(t, err)
	assert.NotEqual(t, accessID, newAccessID)
	assert.NotEqual(t, token, newToken)

	ok, err := mgr.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, ok, "old session should be revoked after rotation")

	ok, err = mgr.HasSession(ctx, newAccessID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRotateRejectsWrongToken(t *testing.T) {
	store := newStubStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	_, err := mgr.Generate(ctx, accessID)
	require.NoError(t, err)

	_, _, err = mgr.Rotate(ctx, accessID, "not-the-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	ok, err := mgr.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, ok, "failed rotation must not revoke the session")
}

func TestRotateUnknownAccessID(t *testing.T) {
	mgr := newTestManager(newStubStore())

	_, _, err := mgr.Rotate(context.Background(), NewAccessID(), "whatever")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRevoke(t *testing.T) {
	store := newStubStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	_, err := mgr.Generate(ctx, accessID)
	require.NoError(t, err)

	require.NoError(t, mgr.Revoke(ctx, accessID))

	ok, err := mgr.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, ok)
}
