package graph

import (
	"context"
	"testing"

	"solgraph/addr"
	"solgraph/asset"
	"solgraph/price"
	"solgraph/tx"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeTransferEndToEnd(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		systemTransferIx(payerAddr, aliceAddr, 2_000_000_000),
	}

	env := newTestEnv(transaction)
	solPrice := decimal.NewFromInt(200)
	env.prices.prices[asset.NativeMint] = []*price.Price{
		{Mint: asset.NativeMint, Day: "20250101", Value: &solPrice},
	}

	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{payerAddr, aliceAddr, BurnNode, ValidatorNode},
		nodeAddresses(result))
	require.Len(t, result.Edges, 3)

	transfers := edgesOfKind(result, KindTransfer)
	require.Len(t, transfers, 1)

	transfer := transfers[0]
	assert.Equal(t, payerAddr, transfer.Source)
	assert.Equal(t, aliceAddr, transfer.Target)
	assert.Equal(t, uint64(2_000_000_000), transfer.RawAmount)
	assert.True(t, transfer.Amount.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, asset.NativeTicker, transfer.Ticker)
	require.NotNil(t, transfer.Value)
	assert.True(t, transfer.Value.Equal(decimal.NewFromInt(400)))

	assert.Equal(t, "Fee Payer", findNode(result, payerAddr).Label)
}

func TestRebuildWithExistingStateEmitsNoEdges(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		systemTransferIx(payerAddr, aliceAddr, 2_000_000_000),
	}

	env := newTestEnv(transaction)
	first, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)
	require.Len(t, first.Edges, 3)

	second, err := env.builder.BuildTxFlows(context.Background(), testTxID,
		nodeAddresses(first), edgeIDs(first))
	require.NoError(t, err)

	// Nodes still describe everyone the transaction touched; only the
	// edges the caller already holds are withheld.
	assert.ElementsMatch(t, nodeAddresses(first), nodeAddresses(second))
	assert.Empty(t, second.Edges)
}

func TestEdgeIdentityUsesRawAmount(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		systemTransferIx(payerAddr, aliceAddr, 2_000_000_000),
	}

	env := newTestEnv(transaction)
	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	transfer := edgesOfKind(result, KindTransfer)[0]
	assert.Equal(t,
		testTxID+"-"+payerAddr+"-"+aliceAddr+"-"+asset.NativeMint+"-2000000000",
		transfer.ID())
}

func TestTokenAmountScaledByResolvedDecimals(t *testing.T) {
	transaction := baseTx()
	transaction.Accounts = []string{payerAddr, aliceATA, bobATA}
	transaction.PreTokenBalances = []tx.TokenBalance{
		{AccountIndex: 1, Mint: usdcMint, Owner: aliceAddr},
		{AccountIndex: 2, Mint: usdcMint, Owner: bobAddr},
	}
	transaction.Inner = []tx.InnerGroup{
		{Index: 0, Instructions: []tx.Instruction{
			tokenTransferIx(aliceATA, bobATA, aliceAddr, "1500000"),
		}},
	}

	env := newTestEnv(transaction)
	env.assets.assets[usdcMint] = &asset.Asset{Mint: usdcMint, Ticker: "USDC", Decimals: 6}
	usdcPrice := decimal.NewFromInt(1)
	env.prices.prices[usdcMint] = []*price.Price{
		{Mint: usdcMint, Day: "20250101", Value: &usdcPrice},
	}

	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	transfer := edgesOfKind(result, KindTransfer)[0]
	assert.True(t, transfer.Amount.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, "USDC", transfer.Ticker)
	require.NotNil(t, transfer.Value)
	assert.True(t, transfer.Value.Equal(decimal.RequireFromString("1.5")))
}

func TestAccountMetadataWritesThrough(t *testing.T) {
	env := newTestEnv(baseTx())
	env.accounts.accounts[caroAddr] = &addr.Account{
		Address: caroAddr,
		Label:   "Caro",
		Tags:    "whale",
	}

	account, err := env.builder.AccountMetadata(context.Background(), caroAddr)
	require.NoError(t, err)
	assert.Equal(t, "Caro", account.Label)

	// A second lookup is served from the store.
	_, err = env.builder.AccountMetadata(context.Background(), caroAddr)
	require.NoError(t, err)
	assert.Equal(t, []string{caroAddr}, env.accounts.calls)
}

func TestAccountMetadataRemoteFailurePropagates(t *testing.T) {
	env := newTestEnv(baseTx())

	_, err := env.builder.AccountMetadata(context.Background(), caroAddr)
	require.Error(t, err)
}
