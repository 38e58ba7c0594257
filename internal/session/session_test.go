package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewManager(NewRedisStore(rdb), NewCodec("test-secret")), mr
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("s3cret")
	value, err := codec.Encode("abc-123")
	require.NoError(t, err)

	id, err := codec.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestCodec_RejectsForeignSignature(t *testing.T) {
	value, err := NewCodec("one").Encode("abc")
	require.NoError(t, err)

	_, err = NewCodec("two").Decode(value)
	assert.ErrorIs(t, err, ErrInvalidCookie)

	_, err = NewCodec("one").Decode("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestManager_SetUserIDCreatesSession(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	sess, err := m.FromCookie(ctx, "")
	require.NoError(t, err)
	_, ok := sess.UserID()
	assert.False(t, ok)

	action, value, err := m.Apply(ctx, sess, []Mutation{SetUserID(7)})
	require.NoError(t, err)
	assert.Equal(t, CookieSet, action)
	require.NotEmpty(t, value)
	require.NotEmpty(t, sess.ID)

	stored, err := mr.Get(KeyPrefix + sess.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":7}`, stored)
	assert.Equal(t, MaxAge, mr.TTL(KeyPrefix+sess.ID))

	loaded, err := m.FromCookie(ctx, value)
	require.NoError(t, err)
	userID, ok := loaded.UserID()
	assert.True(t, ok)
	assert.Equal(t, uint(7), userID)
}

func TestManager_SetUserIDReusesExistingID(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess := &Session{}
	_, _, err := m.Apply(ctx, sess, []Mutation{SetUserID(1)})
	require.NoError(t, err)
	firstID := sess.ID

	_, _, err = m.Apply(ctx, sess, []Mutation{SetUserID(2)})
	require.NoError(t, err)
	assert.Equal(t, firstID, sess.ID)
	userID, _ := sess.UserID()
	assert.Equal(t, uint(2), userID)
}

func TestManager_Clear(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	sess := &Session{}
	_, _, err := m.Apply(ctx, sess, []Mutation{SetUserID(3)})
	require.NoError(t, err)
	id := sess.ID

	action, value, err := m.Apply(ctx, sess, []Mutation{Clear()})
	require.NoError(t, err)
	assert.Equal(t, CookieClear, action)
	assert.Empty(t, value)
	assert.False(t, mr.Exists(KeyPrefix+id))
	assert.Empty(t, sess.ID)
}

func TestManager_NoMutations(t *testing.T) {
	m, mr := newTestManager(t)
	action, _, err := m.Apply(context.Background(), &Session{}, nil)
	require.NoError(t, err)
	assert.Equal(t, CookieKeep, action)
	assert.Empty(t, mr.Keys())
}

func TestManager_FromCookie_InvalidOrMissing(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := m.FromCookie(ctx, "garbage")
	require.NoError(t, err)
	assert.Empty(t, sess.ID)

	// validly signed but no such key in Redis
	value, err := NewCodec("test-secret").Encode("expired")
	require.NoError(t, err)
	sess, err = m.FromCookie(ctx, value)
	require.NoError(t, err)
	_, ok := sess.UserID()
	assert.False(t, ok)
}

func TestRedisStore_LoadFailure(t *testing.T) {
	m, mr := newTestManager(t)
	value, err := NewCodec("test-secret").Encode("abc")
	require.NoError(t, err)

	mr.Close()
	_, err = m.FromCookie(context.Background(), value)
	assert.Error(t, err)
}

func TestMutation_IsZero(t *testing.T) {
	assert.True(t, Mutation{}.IsZero())
	assert.False(t, SetUserID(1).IsZero())
	assert.False(t, Clear().IsZero())
}
