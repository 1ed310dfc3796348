package graph

import (
	"context"

	"solgraph/log"
	"solgraph/tx"
)

// BuildAccountFlows builds a flow graph from one page of an account's
// transfer records. Records carry their own decimals, so amounts are
// scaled at build time; asset enrichment only contributes ticker and
// icon here. HasMore is a heuristic: a page filled exactly to the
// requested limit suggests more records exist.
func (b *Builder) BuildAccountFlows(ctx context.Context, address string, q tx.FlowQuery, existingNodes, existingEdges []string) (*Result, error) {
	flows, err := b.Flows.Flows(ctx, address, q)
	if err != nil {
		return nil, err
	}

	g := newBuild(existingNodes, existingEdges)

	for _, f := range flows {
		if f.From == "" || f.To == "" {
			log.Printf("Skipping flow %s with missing endpoint", f.TxID)
			continue
		}

		g.node(f.From)
		g.node(f.To)

		kind := Kind(f.Kind)
		if kind == "" {
			kind = KindTransfer
		}

		e := &Edge{
			Source:     f.From,
			Target:     f.To,
			Kind:       kind,
			Mint:       f.Mint,
			RawAmount:  f.RawAmount,
			Amount:     scaled(f.RawAmount, f.Decimals),
			TxID:       f.TxID,
			BlockTime:  f.BlockTime,
			normalized: true,
		}
		g.addEdge(e)
	}

	b.enrichAssets(ctx, g)
	b.enrichPrices(ctx, g)
	b.enrichAccounts(ctx, g)

	result := g.result()
	hasMore := q.Limit > 0 && len(flows) == q.Limit
	result.HasMore = &hasMore

	return result, nil
}
