package rpc

import (
	"context"

	"solgraph/asset"
	"solgraph/tx"
)

// Source adapts the package level rpc calls to the injected source
// contracts of the graph builder and token cache.
type Source struct{}

// Transaction implements the transaction source.
func (Source) Transaction(_ context.Context, txID string) (*tx.Transaction, error) {
	return GetTransaction(txID)
}

// Asset implements the asset metadata source.
func (Source) Asset(_ context.Context, mint string) (*asset.Asset, error) {
	return GetAsset(mint)
}
