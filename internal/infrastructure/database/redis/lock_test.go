package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/pkg/errors"
)

func TestLeaser_AcquireRelease(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	l := NewLeaser(client, "p2r:", time.Minute)

	lease, ok, err := l.Acquire(ctx, "req-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("p2r:lease:req-1"))
	assert.Equal(t, time.Minute, mr.TTL("p2r:lease:req-1"))

	_, ok, err = l.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, ok, "second owner must not get a held lease")

	require.NoError(t, lease.Release(ctx))
	assert.False(t, mr.Exists("p2r:lease:req-1"))

	_, ok, err = l.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLeaser_ReleaseAfterExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	l := NewLeaser(client, "", time.Second)

	lease, ok, err := l.Acquire(ctx, "req-2")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	other, ok, err := l.Acquire(ctx, "req-2")
	require.NoError(t, err)
	require.True(t, ok)

	err = lease.Release(ctx)
	assert.ErrorIs(t, err, ErrLeaseNotHeld)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
	assert.True(t, mr.Exists("lease:req-2"), "stale release must not drop the new owner's lease")
	require.NoError(t, other.Release(ctx))
}

func TestNewLeaser_DefaultTTL(t *testing.T) {
	client, _ := newTestClient(t)
	assert.Equal(t, 5*time.Minute, NewLeaser(client, "", 0).ttl)
}

//Personal.AI order the ending
