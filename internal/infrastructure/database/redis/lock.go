package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/patent2rag/pkg/errors"
)

var ErrLeaseNotHeld = errors.New(errors.ErrCodeConflict, "lease not held by this owner")

// releaseScript deletes the key only when the caller still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Leaser hands out short-lived exclusive leases, used by the ingest worker
// so a redelivered request is not converted twice at the same time.
type Leaser struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewLeaser builds a Leaser whose leases expire after ttl.
func NewLeaser(client *Client, prefix string, ttl time.Duration) *Leaser {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Leaser{client: client, prefix: prefix + "lease:", ttl: ttl}
}

// Lease is a held lease.
type Lease struct {
	leaser *Leaser
	key    string
	token  string
}

// Acquire takes the lease on name. ok is false when another owner holds it.
func (l *Leaser) Acquire(ctx context.Context, name string) (*Lease, bool, error) {
	key := l.prefix + name
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to acquire lease")
	}
	if !ok {
		return nil, false, nil
	}
	return &Lease{leaser: l, key: key, token: token}, true, nil
}

// Release gives the lease back.
func (ls *Lease) Release(ctx context.Context) error {
	res, err := releaseScript.Run(ctx, ls.leaser.client.GetUnderlyingClient(), []string{ls.key}, ls.token).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release lease")
	}
	if res == 0 {
		return ErrLeaseNotHeld
	}
	return nil
}

//Personal.AI order the ending
