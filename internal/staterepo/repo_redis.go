package staterepo

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/streampot/streampot/internal/domain"
)

const (
	accountKeyPrefix = "account:"
	poolKeyPrefix    = "pool:"
	activePoolsKey   = "pools:active"
)

// RepoRedis is the document-store gateway backend.
//
// Accounts and pools are JSON documents under keyed entries; the ids of
// active pools are tracked in a set so startup recovery never scans
// terminal records.
type RepoRedis struct {
	client *redis.Client
}

// NewRepoRedis returns a Redis backed gateway.
func NewRepoRedis(client *redis.Client) *RepoRedis {
	return &RepoRedis{client: client}
}

// LoadAccounts returns every persisted account.
func (r *RepoRedis) LoadAccounts(ctx context.Context) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	accounts := make([]domain.Account, 0)

	iter := r.client.Scan(ctx, 0, accountKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}

			l.Error().Err(err).Str("key", iter.Val()).Send()

			return nil, err
		}

		var a domain.Account
		if err := json.Unmarshal(data, &a); err != nil {
			l.Error().Err(err).Str("key", iter.Val()).Send()
			return nil, err
		}

		accounts = append(accounts, a)
	}

	if err := iter.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, err
	}

	return accounts, nil
}

// SaveAccount durably stores the account before acknowledging.
func (r *RepoRedis) SaveAccount(ctx context.Context, account domain.Account) error {
	l := zerolog.Ctx(ctx)

	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, accountKeyPrefix+account.ID, data, 0).Err(); err != nil {
		l.Error().Err(err).Str("account", account.ID).Send()
		return err
	}

	return nil
}

// LoadActivePools returns every persisted open or drawing pool.
func (r *RepoRedis) LoadActivePools(ctx context.Context) ([]domain.Pool, error) {
	l := zerolog.Ctx(ctx)

	ids, err := r.client.SMembers(ctx, activePoolsKey).Result()
	if err != nil {
		l.Error().Err(err).Send()
		return nil, err
	}

	pools := make([]domain.Pool, 0, len(ids))

	for _, id := range ids {
		data, err := r.client.Get(ctx, poolKeyPrefix+id).Bytes()
		if err != nil {
			if err == redis.Nil {
				// Stale set member; drop it.
				r.client.SRem(ctx, activePoolsKey, id)
				continue
			}

			l.Error().Err(err).Str("pool", id).Send()

			return nil, err
		}

		var p domain.Pool
		if err := json.Unmarshal(data, &p); err != nil {
			l.Error().Err(err).Str("pool", id).Send()
			return nil, err
		}

		pools = append(pools, p)
	}

	return pools, nil
}

// SavePool durably stores the pool and keeps the active-pool set in sync.
// Terminal pool documents are retained for audit.
func (r *RepoRedis) SavePool(ctx context.Context, pool domain.Pool) error {
	l := zerolog.Ctx(ctx)

	data, err := json.Marshal(pool)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, poolKeyPrefix+pool.ID, data, 0)

	if pool.Active() {
		pipe.SAdd(ctx, activePoolsKey, pool.ID)
	} else {
		pipe.SRem(ctx, activePoolsKey, pool.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		l.Error().Err(err).Str("pool", pool.ID).Send()
		return err
	}

	return nil
}

// DeletePool removes the pool record and its active-set membership.
func (r *RepoRedis) DeletePool(ctx context.Context, poolID string) error {
	l := zerolog.Ctx(ctx)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, poolKeyPrefix+poolID)
	pipe.SRem(ctx, activePoolsKey, poolID)

	if _, err := pipe.Exec(ctx); err != nil {
		l.Error().Err(err).Str("pool", poolID).Send()
		return err
	}

	return nil
}
