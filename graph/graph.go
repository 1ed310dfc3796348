package graph

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"solgraph/addr"
	"solgraph/asset"
	"solgraph/price"
	"solgraph/tx"

	"github.com/shopspring/decimal"
)

// Sentinel pseudo addresses representing fee sinks. They appear as
// graph nodes but are never metadata enriched.
const (
	BurnNode      = "Burn"
	ValidatorNode = "Validator"
)

// Kind classifies an edge.
type Kind string

// Edge kinds.
const (
	KindTransfer Kind = "transfer"
	KindFee      Kind = "fee"
	KindStake    Kind = "stake"
	KindDelegate Kind = "delegate"
)

// ErrMalformed marks decode failures caused by the transaction's shape:
// a required field absent, or an address unresolvable through the
// associated account map. Never a transient condition.
var ErrMalformed = errors.New("malformed transaction")

func malformedf(format string, v ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformed}, v...)...)
}

// Node is one account in the flow graph.
type Node struct {
	Address string   `json:"pubkey"`
	Label   string   `json:"label"`
	Tags    []string `json:"tags"`
	Type    string   `json:"type"`
	Icon    string   `json:"imgUrl"`
}

// Edge is one value movement between two owner level endpoints.
type Edge struct {
	Source    string           `json:"source"`
	Target    string           `json:"target"`
	Kind      Kind             `json:"type"`
	Mint      string           `json:"mint"`
	Amount    decimal.Decimal  `json:"amount"`
	Value     *decimal.Decimal `json:"value,omitempty"`
	TxID      string           `json:"txId"`
	BlockTime int64            `json:"blockTime,omitempty"`
	Tag       string           `json:"tag,omitempty"`
	ProgramID string           `json:"programId,omitempty"`
	Ticker    string           `json:"ticker,omitempty"`
	TokenIcon string           `json:"tokenImage,omitempty"`

	// RawAmount is the unscaled integer amount. It is part of the
	// edge identity and stays untouched by enrichment.
	RawAmount uint64 `json:"-"`

	// normalized flips once Amount has been divided by the asset's
	// decimals, so enrichment never scales twice.
	normalized bool
}

// ID returns the edge's dedup identity. Deliberately built on the raw
// amount: the identity of an edge must not change depending on whether
// its asset's decimals were already resolvable at build time.
func (e *Edge) ID() string {
	return fmt.Sprintf("%s-%s-%s-%s-%d", e.TxID, e.Source, e.Target, e.Mint, e.RawAmount)
}

// Result is the built flow graph handed to the route layer.
type Result struct {
	Nodes   []*Node `json:"nodes"`
	Edges   []*Edge `json:"edges"`
	HasMore *bool   `json:"hasMore,omitempty"`
}

// TxSource fetches one parsed ledger transaction.
type TxSource interface {
	Transaction(ctx context.Context, txID string) (*tx.Transaction, error)
}

// FlowSource fetches one page of an account's transfer records.
type FlowSource interface {
	Flows(ctx context.Context, address string, q tx.FlowQuery) ([]*tx.Flow, error)
}

// AssetResolver resolves a mint to its metadata, whatever caching
// sits behind it. Never called for the native asset.
type AssetResolver interface {
	Resolve(ctx context.Context, mint string) (*asset.Asset, error)
}

// AccountSource fetches account metadata from the remote provider.
type AccountSource interface {
	Account(ctx context.Context, address string) (*addr.Account, error)
}

// PriceSource fetches daily prices over an inclusive day range.
// Days inside the range with no known price simply return no entry.
type PriceSource interface {
	Range(ctx context.Context, mint, fromDay, toDay string) ([]*price.Price, error)
}

// Store is the shared relational cache. All writes are insert-if-absent;
// concurrent requests racing on the same key resolve at the store level.
type Store interface {
	Accounts(ctx context.Context, addresses []string) (map[string]*addr.Account, error)
	PutAccounts(ctx context.Context, accounts []*addr.Account) error
	Prices(ctx context.Context, keys []price.Key) (map[price.Key]*price.Price, error)
	PutPrices(ctx context.Context, prices []*price.Price) error
}

// Builder builds flow graphs. All collaborators are injected; one
// Builder serves concurrent requests, per request state lives in the
// build struct below.
type Builder struct {
	Tx       TxSource
	Flows    FlowSource
	Assets   AssetResolver
	Accounts AccountSource
	Prices   PriceSource
	Store    Store

	// Workers caps concurrent remote lookups within one
	// enrichment batch.
	Workers int
}

func (b *Builder) workers() int {
	if b.Workers < 1 {
		return 8
	}
	return b.Workers
}

// build is the per request graph under construction.
type build struct {
	nodes     []*Node
	nodeIndex map[string]*Node
	edges     []*Edge

	existingEdges map[string]struct{}
	existingNodes map[string]struct{}
}

func newBuild(existingNodes, existingEdges []string) *build {
	g := &build{
		nodeIndex:     make(map[string]*Node),
		existingEdges: make(map[string]struct{}, len(existingEdges)),
		existingNodes: make(map[string]struct{}, len(existingNodes)),
	}

	for _, id := range existingEdges {
		g.existingEdges[id] = struct{}{}
	}
	for _, address := range existingNodes {
		g.existingNodes[address] = struct{}{}
	}

	return g
}

// node returns the node for address, creating it on first sight.
// Node presence tracks "seen in this transaction", independent of
// which edges survive dedup filtering.
func (g *build) node(address string) *Node {
	if n, ok := g.nodeIndex[address]; ok {
		return n
	}

	n := &Node{
		Address: address,
		Tags:    []string{},
	}
	g.nodeIndex[address] = n
	g.nodes = append(g.nodes, n)

	return n
}

// addEdge appends e unless its identity is already known to the
// caller's previously rendered graph. Applied at emission time,
// order preserving.
func (g *build) addEdge(e *Edge) {
	if _, ok := g.existingEdges[e.ID()]; ok {
		return
	}

	if !e.normalized {
		e.Amount = rawDecimal(e.RawAmount)
	}

	g.edges = append(g.edges, e)
}

func (g *build) result() *Result {
	edges := g.edges
	if edges == nil {
		edges = []*Edge{}
	}
	nodes := g.nodes
	if nodes == nil {
		nodes = []*Node{}
	}

	return &Result{Nodes: nodes, Edges: edges}
}

// rawDecimal converts a raw uint64 amount without scaling.
func rawDecimal(raw uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), 0)
}

// scaled converts a raw uint64 amount into decimal units.
func scaled(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
}
