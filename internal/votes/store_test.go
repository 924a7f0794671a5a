package votes

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Cast(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectIncr("chainmagnet:votes:chainlink").SetVal(3)

	store := NewStore(client)
	n, err := store.Cast(context.Background(), "chainlink")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_CountMissingKeyIsZero(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("chainmagnet:votes:ghost").RedisNil()

	store := NewStore(client)
	n, err := store.Count(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestStore_Count(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("chainmagnet:votes:chainlink").SetVal("42")

	store := NewStore(client)
	n, err := store.Count(context.Background(), "chainlink")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestStore_Disabled(t *testing.T) {
	store := NewStore(nil)
	assert.False(t, store.Enabled())

	_, err := store.Cast(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = store.Count(context.Background(), "x")
	assert.ErrorIs(t, err, ErrDisabled)
}
