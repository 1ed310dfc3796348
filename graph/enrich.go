package graph

import (
	"context"
	"sync"

	"solgraph/addr"
	"solgraph/asset"
	"solgraph/log"
	"solgraph/price"
	"solgraph/util"
)

// fanOut runs n work items concurrently, capped at the builder's
// worker count, and waits for all of them. Each item records its own
// outcome; one item failing never cancels the others.
func (b *Builder) fanOut(n int, work func(i int)) {
	sem := make(chan struct{}, b.workers())
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			work(i)
		}(i)
	}

	wg.Wait()
}

// enrichAssets resolves metadata for every distinct non native mint the
// surviving edges reference, then scales raw amounts into decimal
// units. Best effort per asset: a mint that cannot be resolved leaves
// its edges unscaled and unticked, everything else proceeds.
func (b *Builder) enrichAssets(ctx context.Context, g *build) {
	var mints []string
	seen := make(map[string]struct{})

	for _, e := range g.edges {
		if asset.IsNative(e.Mint) {
			continue
		}
		if _, ok := seen[e.Mint]; ok {
			continue
		}
		seen[e.Mint] = struct{}{}
		mints = append(mints, e.Mint)
	}

	resolved := make(map[string]*asset.Asset, len(mints))
	var mu sync.Mutex

	b.fanOut(len(mints), func(i int) {
		mint := mints[i]

		a, err := b.Assets.Resolve(ctx, mint)
		if err != nil {
			log.Errorf("Failed to resolve asset %s: %v", mint, err)
			return
		}

		mu.Lock()
		resolved[mint] = a
		mu.Unlock()
	})

	native := asset.Native()

	for _, e := range g.edges {
		if e.Kind == KindDelegate {
			continue
		}

		a := resolved[e.Mint]
		if asset.IsNative(e.Mint) {
			a = native
		}
		if a == nil {
			continue
		}

		e.Ticker = a.Ticker
		e.TokenIcon = a.Icon

		if !e.normalized {
			e.Amount = scaled(e.RawAmount, a.Decimals)
			e.normalized = true
		}
	}
}

// enrichPrices attaches fiat values. Cached days are read in one batch;
// for the rest, one range query per mint runs concurrently. A day the
// provider does not return is persisted as an explicit unknown so it is
// never asked for again.
func (b *Builder) enrichPrices(ctx context.Context, g *build) {
	var keys []price.Key
	seen := make(map[price.Key]struct{})

	for _, e := range g.edges {
		if e.Kind == KindDelegate {
			continue
		}
		k := priceKey(e)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	if len(keys) == 0 {
		return
	}

	prices, err := b.Store.Prices(ctx, keys)
	if err != nil {
		log.Errorf("Failed to read cached prices: %v", err)
		prices = make(map[price.Key]*price.Price)
	}

	daysByMint := make(map[string][]string)
	for _, k := range keys {
		if _, ok := prices[k]; ok {
			continue
		}
		daysByMint[k.Mint] = append(daysByMint[k.Mint], k.Day)
	}

	if len(daysByMint) > 0 {
		mints := make([]string, 0, len(daysByMint))
		for mint := range daysByMint {
			mints = append(mints, mint)
		}

		var mu sync.Mutex
		var fresh []*price.Price

		b.fanOut(len(mints), func(i int) {
			mint := mints[i]
			days := daysByMint[mint]

			fromDay, toDay := days[0], days[0]
			for _, day := range days[1:] {
				if util.DayBefore(day, fromDay) {
					fromDay = day
				}
				if util.DayBefore(toDay, day) {
					toDay = day
				}
			}

			rows, err := b.Prices.Range(ctx, mint, fromDay, toDay)
			if err != nil {
				log.Errorf("Failed to fetch prices for %s [%s, %s]: %v", mint, fromDay, toDay, err)
				rows = nil
			}

			returned := make(map[string]struct{}, len(rows))

			mu.Lock()
			for _, row := range rows {
				returned[row.Day] = struct{}{}
				prices[row.Key()] = row
				fresh = append(fresh, row)
			}
			for _, day := range days {
				if _, ok := returned[day]; ok {
					continue
				}
				unknown := price.Unknown(mint, day)
				prices[unknown.Key()] = unknown
				fresh = append(fresh, unknown)
			}
			mu.Unlock()
		})

		if len(fresh) > 0 {
			if err := b.Store.PutPrices(ctx, fresh); err != nil {
				log.Errorf("Failed to persist %d price rows: %v", len(fresh), err)
			}
		}
	}

	for _, e := range g.edges {
		if e.Kind == KindDelegate || !e.normalized {
			continue
		}

		p := prices[priceKey(e)]
		if p == nil || p.Value == nil {
			continue
		}

		v := e.Amount.Mul(*p.Value)
		e.Value = &v
	}
}

func priceKey(e *Edge) price.Key {
	mint := e.Mint
	if asset.IsNative(mint) {
		mint = asset.NativeMint
	}
	return price.Key{Mint: mint, Day: util.Day(e.BlockTime)}
}

// enrichAccounts attaches label, tags, type and icon to every node the
// caller does not already hold, sentinels aside. Cache hits come from
// one batch read; misses are fetched concurrently. A failed fetch still
// leaves the node with empty but present metadata, and writes nothing,
// so a later request may retry the address.
func (b *Builder) enrichAccounts(ctx context.Context, g *build) {
	var targets []*Node

	for _, n := range g.nodes {
		if n.Address == BurnNode || n.Address == ValidatorNode {
			continue
		}
		if _, ok := g.existingNodes[n.Address]; ok {
			continue
		}
		targets = append(targets, n)
	}

	if len(targets) == 0 {
		return
	}

	addresses := make([]string, len(targets))
	for i, n := range targets {
		addresses[i] = n.Address
	}

	cached, err := b.Store.Accounts(ctx, addresses)
	if err != nil {
		log.Errorf("Failed to read cached accounts: %v", err)
		cached = make(map[string]*addr.Account)
	}

	var missing []*Node
	for _, n := range targets {
		if account, ok := cached[n.Address]; ok {
			attachAccount(n, account)
			continue
		}
		missing = append(missing, n)
	}

	if len(missing) == 0 {
		return
	}

	var mu sync.Mutex
	var fetched []*addr.Account

	b.fanOut(len(missing), func(i int) {
		n := missing[i]

		account, err := b.Accounts.Account(ctx, n.Address)
		if err != nil {
			log.Errorf("Failed to fetch metadata for %s: %v", n.Address, err)
			attachAccount(n, &addr.Account{Address: n.Address})
			return
		}

		attachAccount(n, account)

		mu.Lock()
		fetched = append(fetched, account)
		mu.Unlock()
	})

	if len(fetched) > 0 {
		if err := b.Store.PutAccounts(ctx, fetched); err != nil {
			log.Errorf("Failed to persist %d account rows: %v", len(fetched), err)
		}
	}
}

func attachAccount(n *Node, account *addr.Account) {
	// Keep a label set during decoding ("Fee Payer", "Wrap SOL")
	// unless the metadata provider knows a better one.
	if account.Label != "" {
		n.Label = account.Label
	}
	n.Tags = account.TagList()
	n.Type = account.Type
	n.Icon = account.Icon
}
