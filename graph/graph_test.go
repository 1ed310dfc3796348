package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"

	"solgraph/addr"
	"solgraph/asset"
	"solgraph/log"
	"solgraph/price"
	"solgraph/tx"
)

func TestMain(m *testing.M) {
	log.Init()
	os.Exit(m.Run())
}

// Test account addresses.
const (
	payerAddr = "FpAyeRGkXg41fY1JNab1RVvkik2xcihT33PJ7eWiTs7V"
	aliceAddr = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	bobAddr   = "2RJHVBfeN7Yptbg83VX97UVVeD6UrU9ga11TMwbveQiu"
	caroAddr  = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"

	aliceATA = "HYyzsinNKdogVMwpAdQvTJ1Vcw6C9RSW4mUCsi2wmUSn"
	bobATA   = "BEmhsYtQFkcjVCucv2GsnEXQbDXj3RG7FdQVs7u15RLP"

	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	rayMint  = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"

	swapProgram = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"

	testTxID = "4Jgs8aGj66iQCt88mNPXyjoJpPaCpYwurgym6AtJ2dBf9HZBqwV8ioNXwUw9Sq4iCHjVFPCDthZ6FbPoeeWjXZwh"
)

type fakeTxSource struct {
	transaction *tx.Transaction
	err         error
}

func (f fakeTxSource) Transaction(_ context.Context, _ string) (*tx.Transaction, error) {
	return f.transaction, f.err
}

type fakeFlowSource struct {
	flows []*tx.Flow
	err   error
}

func (f fakeFlowSource) Flows(_ context.Context, _ string, _ tx.FlowQuery) ([]*tx.Flow, error) {
	return f.flows, f.err
}

type fakeAssets struct {
	mu     sync.Mutex
	assets map[string]*asset.Asset
	calls  int
}

func (f *fakeAssets) Resolve(_ context.Context, mint string) (*asset.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	a, ok := f.assets[mint]
	if !ok {
		return nil, fmt.Errorf("no metadata for %s", mint)
	}
	return a, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*addr.Account
	calls    []string
}

func (f *fakeAccounts) Account(_ context.Context, address string) (*addr.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, address)

	a, ok := f.accounts[address]
	if !ok {
		return nil, fmt.Errorf("no metadata for %s", address)
	}
	return a, nil
}

type fakePrices struct {
	mu     sync.Mutex
	prices map[string][]*price.Price
	err    error
	calls  int
}

func (f *fakePrices) Range(_ context.Context, mint, _, _ string) ([]*price.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	if f.err != nil {
		return nil, f.err
	}
	return f.prices[mint], nil
}

type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]*addr.Account
	prices   map[price.Key]*price.Price
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[string]*addr.Account),
		prices:   make(map[price.Key]*price.Price),
	}
}

func (f *fakeStore) Accounts(_ context.Context, addresses []string) (map[string]*addr.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make(map[string]*addr.Account)
	for _, address := range addresses {
		if a, ok := f.accounts[address]; ok {
			result[address] = a
		}
	}
	return result, nil
}

func (f *fakeStore) PutAccounts(_ context.Context, accounts []*addr.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range accounts {
		if _, ok := f.accounts[a.Address]; !ok {
			f.accounts[a.Address] = a
		}
	}
	return nil
}

func (f *fakeStore) Prices(_ context.Context, keys []price.Key) (map[price.Key]*price.Price, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make(map[price.Key]*price.Price)
	for _, k := range keys {
		if p, ok := f.prices[k]; ok {
			result[k] = p
		}
	}
	return result, nil
}

func (f *fakeStore) PutPrices(_ context.Context, prices []*price.Price) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range prices {
		if _, ok := f.prices[p.Key()]; !ok {
			f.prices[p.Key()] = p
		}
	}
	return nil
}

type testEnv struct {
	builder  *Builder
	assets   *fakeAssets
	accounts *fakeAccounts
	prices   *fakePrices
	store    *fakeStore
}

func newTestEnv(transaction *tx.Transaction) *testEnv {
	env := &testEnv{
		assets:   &fakeAssets{assets: make(map[string]*asset.Asset)},
		accounts: &fakeAccounts{accounts: make(map[string]*addr.Account)},
		prices:   &fakePrices{prices: make(map[string][]*price.Price)},
		store:    newFakeStore(),
	}

	env.builder = &Builder{
		Tx:       fakeTxSource{transaction: transaction},
		Assets:   env.assets,
		Accounts: env.accounts,
		Prices:   env.prices,
		Store:    env.store,
		Workers:  4,
	}

	return env
}

func info(format string, v ...interface{}) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(format, v...))
}

func parsedIx(programID, ixType string, payload json.RawMessage) tx.Instruction {
	return tx.Instruction{ProgramID: programID, Type: ixType, Info: payload}
}

func opaqueIx(programID string) tx.Instruction {
	return tx.Instruction{ProgramID: programID}
}

// baseTx returns a minimal transaction: one fee payer, one signature,
// exactly the base fee.
func baseTx() *tx.Transaction {
	return &tx.Transaction{
		TxID:       testTxID,
		Signatures: 1,
		Fee:        5000,
		BlockTime:  1735689600,
		Accounts:   []string{payerAddr},
	}
}

func systemTransferIx(source, destination string, lamports uint64) tx.Instruction {
	return parsedIx(tx.SystemProgram, tx.TypeTransfer,
		info(`{"source": %q, "destination": %q, "lamports": %d}`, source, destination, lamports))
}

func tokenTransferIx(source, destination, authority, amount string) tx.Instruction {
	return parsedIx(tx.TokenProgram, tx.TypeTransfer,
		info(`{"source": %q, "destination": %q, "authority": %q, "amount": %q}`, source, destination, authority, amount))
}

func initializeAccountIx(account, mint, owner string) tx.Instruction {
	return parsedIx(tx.TokenProgram, tx.TypeInitializeAccount3,
		info(`{"account": %q, "mint": %q, "owner": %q}`, account, mint, owner))
}

func edgeIDs(result *Result) []string {
	ids := make([]string, len(result.Edges))
	for i, e := range result.Edges {
		ids[i] = e.ID()
	}
	return ids
}

func nodeAddresses(result *Result) []string {
	addresses := make([]string, len(result.Nodes))
	for i, n := range result.Nodes {
		addresses[i] = n.Address
	}
	return addresses
}

func findNode(result *Result, address string) *Node {
	for _, n := range result.Nodes {
		if n.Address == address {
			return n
		}
	}
	return nil
}

func edgesOfKind(result *Result, kind Kind) []*Edge {
	var edges []*Edge
	for _, e := range result.Edges {
		if e.Kind == kind {
			edges = append(edges, e)
		}
	}
	return edges
}
