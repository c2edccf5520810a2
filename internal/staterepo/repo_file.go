// Package staterepo manages repository layer of accounts and pools.
//
// Two interchangeable backends implement the same gateway behavior: a Redis
// document store and a flat JSON file. Callers never branch on which one is
// active.
package staterepo

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/streampot/streampot/internal/domain"
)

type fileState struct {
	Accounts map[string]domain.Account `json:"accounts"`
	Pools    map[string]domain.Pool    `json:"pools"`
}

// RepoFile is the flat-file gateway backend.
//
// The whole state is one JSON document rewritten on every save via a temp
// file and rename, so a crash mid-write never corrupts the previous state.
type RepoFile struct {
	path string

	mu    sync.Mutex
	state fileState
}

// NewRepoFile opens or creates the state file at path and loads it.
func NewRepoFile(path string) (*RepoFile, error) {
	r := &RepoFile{
		path: path,
		state: fileState{
			Accounts: make(map[string]domain.Account),
			Pools:    make(map[string]domain.Pool),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}

		return nil, err
	}

	if err := json.Unmarshal(data, &r.state); err != nil {
		return nil, err
	}

	if r.state.Accounts == nil {
		r.state.Accounts = make(map[string]domain.Account)
	}

	if r.state.Pools == nil {
		r.state.Pools = make(map[string]domain.Pool)
	}

	return r, nil
}

// flush rewrites the state file atomically. Caller holds r.mu.
func (r *RepoFile) flush() error {
	data, err := json.MarshalIndent(r.state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".state-*.json")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), r.path)
}

// LoadAccounts returns every persisted account.
func (r *RepoFile) LoadAccounts(ctx context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]domain.Account, 0, len(r.state.Accounts))
	for _, a := range r.state.Accounts {
		accounts = append(accounts, a)
	}

	return accounts, nil
}

// SaveAccount durably stores the account before acknowledging.
func (r *RepoFile) SaveAccount(ctx context.Context, account domain.Account) error {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.state.Accounts[account.ID]
	r.state.Accounts[account.ID] = account

	if err := r.flush(); err != nil {
		if existed {
			r.state.Accounts[account.ID] = prev
		} else {
			delete(r.state.Accounts, account.ID)
		}

		l.Error().Err(err).Str("account", account.ID).Send()

		return err
	}

	return nil
}

// LoadActivePools returns every persisted open or drawing pool.
func (r *RepoFile) LoadActivePools(ctx context.Context) ([]domain.Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pools := make([]domain.Pool, 0)

	for _, p := range r.state.Pools {
		if p.Active() {
			pools = append(pools, p)
		}
	}

	return pools, nil
}

// SavePool durably stores the pool before acknowledging. Terminal pools
// stay in the file for audit until deleted.
func (r *RepoFile) SavePool(ctx context.Context, pool domain.Pool) error {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.state.Pools[pool.ID]
	r.state.Pools[pool.ID] = pool

	if err := r.flush(); err != nil {
		if existed {
			r.state.Pools[pool.ID] = prev
		} else {
			delete(r.state.Pools, pool.ID)
		}

		l.Error().Err(err).Str("pool", pool.ID).Send()

		return err
	}

	return nil
}

// DeletePool removes the pool record.
func (r *RepoFile) DeletePool(ctx context.Context, poolID string) error {
	l := zerolog.Ctx(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.state.Pools[poolID]
	if !existed {
		return nil
	}

	delete(r.state.Pools, poolID)

	if err := r.flush(); err != nil {
		r.state.Pools[poolID] = prev
		l.Error().Err(err).Str("pool", poolID).Send()

		return err
	}

	return nil
}
