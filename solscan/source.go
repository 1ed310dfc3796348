package solscan

import (
	"context"

	"solgraph/addr"
	"solgraph/price"
	"solgraph/tx"
)

// Source adapts the package level solscan calls to the injected
// source contracts of the graph builder.
type Source struct{}

// Account implements the account metadata source.
func (Source) Account(_ context.Context, address string) (*addr.Account, error) {
	return GetAccountMetadata(address)
}

// Range implements the price source.
func (Source) Range(_ context.Context, mint, fromDay, toDay string) ([]*price.Price, error) {
	return GetPriceRange(mint, fromDay, toDay)
}

// Flows implements the account flow source.
func (Source) Flows(_ context.Context, address string, q tx.FlowQuery) ([]*tx.Flow, error) {
	return GetTransfers(address, q)
}
