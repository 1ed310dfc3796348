package graph

import (
	"context"
	"errors"
	"testing"

	"solgraph/asset"
	"solgraph/tx"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapSolEmitsReverseEdge(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		systemTransferIx(payerAddr, aliceATA, 1_000_000_000),
	}
	transaction.Inner = []tx.InnerGroup{
		{Index: 0, Instructions: []tx.Instruction{
			initializeAccountIx(aliceATA, asset.NativeMint, payerAddr),
		}},
	}

	env := newTestEnv(transaction)
	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	transfers := edgesOfKind(result, KindTransfer)
	require.Len(t, transfers, 2)

	assert.Equal(t, payerAddr, transfers[0].Source)
	assert.Equal(t, aliceATA, transfers[0].Target)
	assert.Empty(t, transfers[0].Tag)

	reverse := transfers[1]
	assert.Equal(t, aliceATA, reverse.Source)
	assert.Equal(t, payerAddr, reverse.Target)
	assert.Equal(t, "Wrap SOL", reverse.Tag)
	assert.Equal(t, uint64(1_000_000_000), reverse.RawAmount)

	node := findNode(result, aliceATA)
	require.NotNil(t, node)
	assert.Equal(t, "Wrap SOL", node.Label)
}

func TestStakeAccountCreation(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		parsedIx(tx.SystemProgram, tx.TypeCreateAccount,
			info(`{"source": %q, "newAccount": %q, "owner": %q, "lamports": 3000000000}`,
				payerAddr, aliceAddr, tx.StakeProgram)),
	}

	env := newTestEnv(transaction)
	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	stakes := edgesOfKind(result, KindStake)
	require.Len(t, stakes, 1)
	assert.Equal(t, payerAddr, stakes[0].Source)
	assert.Equal(t, aliceAddr, stakes[0].Target)
	assert.Equal(t, uint64(3_000_000_000), stakes[0].RawAmount)
}

func TestNonStakeAccountCreationIsIgnored(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		parsedIx(tx.SystemProgram, tx.TypeCreateAccount,
			info(`{"source": %q, "newAccount": %q, "owner": %q, "lamports": 2039280}`,
				payerAddr, aliceATA, tx.TokenProgram)),
	}

	env := newTestEnv(transaction)
	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, edgesOfKind(result, KindStake))
}

func TestDelegationEmitsUnitMarkerEdge(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		parsedIx(tx.StakeProgram, tx.TypeDelegate,
			info(`{"stakeAccount": %q, "voteAccount": %q}`, aliceAddr, bobAddr)),
	}

	env := newTestEnv(transaction)
	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	delegations := edgesOfKind(result, KindDelegate)
	require.Len(t, delegations, 1)

	// The unit marker never gets scaled or priced.
	assert.Equal(t, uint64(1), delegations[0].RawAmount)
	assert.True(t, delegations[0].Amount.Equal(decimal.NewFromInt(1)))
	assert.Nil(t, delegations[0].Value)
}

func TestInnerTokenTransferResolvesOwners(t *testing.T) {
	transaction := baseTx()
	transaction.Accounts = []string{payerAddr, aliceATA, bobATA}
	transaction.PreTokenBalances = []tx.TokenBalance{
		{AccountIndex: 1, Mint: usdcMint, Owner: aliceAddr},
		{AccountIndex: 2, Mint: usdcMint, Owner: bobAddr},
	}
	transaction.Inner = []tx.InnerGroup{
		{Index: 0, Instructions: []tx.Instruction{
			opaqueIx(swapProgram),
			tokenTransferIx(aliceATA, bobATA, aliceAddr, "1500000"),
		}},
	}

	env := newTestEnv(transaction)
	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	transfers := edgesOfKind(result, KindTransfer)
	require.Len(t, transfers, 1)

	transfer := transfers[0]
	assert.Equal(t, aliceAddr, transfer.Source)
	assert.Equal(t, bobAddr, transfer.Target)
	assert.Equal(t, usdcMint, transfer.Mint)
	assert.Equal(t, uint64(1_500_000), transfer.RawAmount)
	assert.Equal(t, swapProgram, transfer.ProgramID)
}

func TestProgramContextCarriesAcrossMarkers(t *testing.T) {
	ownedList := scanInner([]tx.InnerGroup{
		{Index: 0, Instructions: []tx.Instruction{
			opaqueIx(swapProgram),
			tokenTransferIx(aliceATA, bobATA, aliceAddr, "1"),
			opaqueIx(tx.AssociatedTokenProgram),
			tokenTransferIx(bobATA, aliceATA, bobAddr, "2"),
		}},
		{Index: 1, Instructions: []tx.Instruction{
			tokenTransferIx(aliceATA, bobATA, aliceAddr, "3"),
		}},
	})

	require.Len(t, ownedList, 3)
	assert.Equal(t, swapProgram, ownedList[0].owner)
	assert.Equal(t, tx.AssociatedTokenProgram, ownedList[1].owner)
	// The context persists into the next group until a new marker shows up.
	assert.Equal(t, tx.AssociatedTokenProgram, ownedList[2].owner)
}

func TestInnerInitializeAccountRegistersUnknownAccounts(t *testing.T) {
	transaction := baseTx()
	transaction.Inner = []tx.InnerGroup{
		{Index: 0, Instructions: []tx.Instruction{
			initializeAccountIx(bobATA, rayMint, bobAddr),
			tokenTransferIx(bobATA, bobATA, bobAddr, "42"),
		}},
	}

	env := newTestEnv(transaction)
	_, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)
}

func TestCreateIdempotentRegistersWithoutEdge(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		parsedIx(tx.AssociatedTokenProgram, tx.TypeCreateIdempotent,
			info(`{"account": %q, "mint": %q, "wallet": %q}`, aliceATA, usdcMint, aliceAddr)),
	}
	transaction.Inner = []tx.InnerGroup{
		{Index: 0, Instructions: []tx.Instruction{
			tokenTransferIx(aliceATA, aliceATA, aliceAddr, "7"),
		}},
	}

	env := newTestEnv(transaction)
	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	// Only the fee edges and the token transfer; the registration
	// itself moves nothing.
	require.Len(t, result.Edges, 3)
	transfers := edgesOfKind(result, KindTransfer)
	require.Len(t, transfers, 1)
	assert.Equal(t, usdcMint, transfers[0].Mint)
}

func TestUnresolvableTokenAccountIsMalformed(t *testing.T) {
	transaction := baseTx()
	transaction.Inner = []tx.InnerGroup{
		{Index: 0, Instructions: []tx.Instruction{
			tokenTransferIx(aliceATA, bobATA, aliceAddr, "1"),
		}},
	}

	env := newTestEnv(transaction)
	_, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestMissingInstructionFieldIsMalformed(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		parsedIx(tx.SystemProgram, tx.TypeTransfer,
			info(`{"source": %q, "destination": %q}`, payerAddr, aliceAddr)),
	}

	env := newTestEnv(transaction)
	_, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestOpaqueTopLevelInstructionsAreIgnored(t *testing.T) {
	transaction := baseTx()
	transaction.Instructions = []tx.Instruction{
		opaqueIx(swapProgram),
	}

	env := newTestEnv(transaction)
	result, err := env.builder.BuildTxFlows(context.Background(), testTxID, nil, nil)
	require.NoError(t, err)

	assert.Len(t, result.Edges, 2)
}
