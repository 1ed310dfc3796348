package cache

import (
	"context"
	"time"

	"solgraph/asset"
	"solgraph/log"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// TokenStore is the relational cache behind the in-memory layer.
type TokenStore interface {
	Token(mint string) (*asset.Asset, error)
	PutToken(a *asset.Asset) error
}

// TokenFetcher is the remote metadata provider of last resort.
type TokenFetcher interface {
	Asset(ctx context.Context, mint string) (*asset.Asset, error)
}

// Tokens resolves mint metadata through three layers: an in-process
// cache, the relational store, and the remote provider, writing
// through on the way back. Concurrent resolutions of the same mint
// collapse into a single lookup.
type Tokens struct {
	store   TokenStore
	fetcher TokenFetcher
	mem     *gocache.Cache
	group   singleflight.Group
}

// NewTokens creates the token resolution stack.
func NewTokens(store TokenStore, fetcher TokenFetcher) *Tokens {
	return &Tokens{
		store:   store,
		fetcher: fetcher,
		mem:     gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// Resolve returns metadata for mint. Asset rows are write once, so a
// cached value never goes stale.
func (t *Tokens) Resolve(ctx context.Context, mint string) (*asset.Asset, error) {
	if cached, ok := t.mem.Get(mint); ok {
		return cached.(*asset.Asset), nil
	}

	v, err, _ := t.group.Do(mint, func() (interface{}, error) {
		a, err := t.store.Token(mint)
		if err != nil {
			log.Errorf("Failed to read cached token %s: %v", mint, err)
		}
		if a != nil {
			t.mem.SetDefault(mint, a)
			return a, nil
		}

		a, err = t.fetcher.Asset(ctx, mint)
		if err != nil {
			return nil, err
		}

		if err := t.store.PutToken(a); err != nil {
			log.Errorf("Failed to persist token %s: %v", mint, err)
		}

		t.mem.SetDefault(mint, a)
		return a, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*asset.Asset), nil
}
