package db

import (
	"context"

	"solgraph/addr"
	"solgraph/asset"
	"solgraph/price"
)

// CacheStore adapts the package level queries to the injected store
// contracts the graph builder and token cache consume.
type CacheStore struct{}

// Accounts implements the batch account read.
func (CacheStore) Accounts(_ context.Context, addresses []string) (map[string]*addr.Account, error) {
	return GetAccounts(addresses)
}

// PutAccounts implements the insert-if-absent account write.
func (CacheStore) PutAccounts(_ context.Context, accounts []*addr.Account) error {
	return InsertAccounts(accounts)
}

// Prices implements the batch price read.
func (CacheStore) Prices(_ context.Context, keys []price.Key) (map[price.Key]*price.Price, error) {
	return GetPrices(keys)
}

// PutPrices implements the insert-if-absent price write.
func (CacheStore) PutPrices(_ context.Context, prices []*price.Price) error {
	return InsertPrices(prices)
}

// Token implements the point token read.
func (CacheStore) Token(mint string) (*asset.Asset, error) {
	return GetToken(mint)
}

// PutToken implements the insert-if-absent token write.
func (CacheStore) PutToken(a *asset.Asset) error {
	return InsertToken(a)
}
