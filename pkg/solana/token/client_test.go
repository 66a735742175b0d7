package token_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/memory"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
	"github.com/code-payments/hashlock-escrow/pkg/testutil"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedger()

	authority := testutil.NewRandomKey(t)
	ledger.Airdrop(authority, 1_000_000_000)

	mint, err := ledger.CreateMint(authority, 6)
	require.NoError(t, err)
	otherMint, err := ledger.CreateMint(authority, 6)
	require.NoError(t, err)

	owner := testutil.NewRandomKey(t)
	account, err := ledger.CreateTokenAccount(owner, mint, 1234)
	require.NoError(t, err)

	client := token.NewClient(ledger.Client(), mint)

	actual, err := client.GetAccount(ctx, account, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, owner, actual.Owner)
	assert.EqualValues(t, mint, actual.Mint)

	balance, err := client.GetBalance(ctx, account, solana.CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 1234, balance)

	_, err = client.GetBalance(ctx, testutil.NewRandomKey(t), solana.CommitmentFinalized)
	assert.Equal(t, token.ErrAccountNotFound, err)

	// Exists, but isn't owned by the token program
	_, err = client.GetAccount(ctx, authority, solana.CommitmentFinalized)
	assert.Equal(t, token.ErrInvalidTokenAccount, err)

	_, err = token.NewClient(ledger.Client(), otherMint).GetAccount(ctx, account, solana.CommitmentFinalized)
	assert.Equal(t, token.ErrInvalidTokenAccount, err)
}
