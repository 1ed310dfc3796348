package graph

import (
	"context"

	"solgraph/addr"
	"solgraph/log"
)

// BuildTxFlows reconstructs the owner level value flow graph of one
// transaction. Decoding is pure and fails hard on shape mismatches;
// the enrichment phases that follow are each best effort per item.
func (b *Builder) BuildTxFlows(ctx context.Context, txID string, existingNodes, existingEdges []string) (*Result, error) {
	t, err := b.Tx.Transaction(ctx, txID)
	if err != nil {
		return nil, err
	}

	g := newBuild(existingNodes, existingEdges)

	if err := g.addFees(t); err != nil {
		return nil, err
	}

	r, err := newResolver(t)
	if err != nil {
		return nil, err
	}

	if err := g.decode(t, r); err != nil {
		return nil, err
	}

	b.enrichAssets(ctx, g)
	b.enrichPrices(ctx, g)
	b.enrichAccounts(ctx, g)

	return g.result(), nil
}

// AccountMetadata resolves one address through the account cache with
// remote fallback, the same write once path the node enricher uses.
func (b *Builder) AccountMetadata(ctx context.Context, address string) (*addr.Account, error) {
	cached, err := b.Store.Accounts(ctx, []string{address})
	if err != nil {
		log.Errorf("Failed to read cached account %s: %v", address, err)
	} else if account, ok := cached[address]; ok {
		return account, nil
	}

	account, err := b.Accounts.Account(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := b.Store.PutAccounts(ctx, []*addr.Account{account}); err != nil {
		log.Errorf("Failed to persist account %s: %v", address, err)
	}

	return account, nil
}
