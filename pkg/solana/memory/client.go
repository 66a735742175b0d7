package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sort"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
)

type client struct {
	ledger *Ledger
}

// Client returns a solana.Client that reads from the ledger.
func (l *Ledger) Client() solana.Client {
	return &client{ledger: l}
}

func (c *client) GetAccountInfo(ctx context.Context, key ed25519.PublicKey, commitment solana.Commitment) (solana.AccountInfo, error) {
	info, _, err := c.GetAccountInfoWithSlot(ctx, key, commitment)
	return info, err
}

func (c *client) GetAccountInfoWithSlot(ctx context.Context, key ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, uint64, error) {
	if err := ctx.Err(); err != nil {
		return solana.AccountInfo{}, 0, err
	}

	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	slot := c.ledger.clock.Slot

	account, ok := c.ledger.accounts[string(key)]
	if !ok {
		return solana.AccountInfo{}, slot, solana.ErrNoAccountInfo
	}

	cloned := account.Clone()
	return solana.AccountInfo{
		Data:       cloned.Data,
		Owner:      cloned.Owner,
		Lamports:   cloned.Lamports,
		Executable: cloned.Executable,
	}, slot, nil
}

func (c *client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.ledger.rent.MinimumBalance(size), nil
}

func (c *client) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, dataSize uint64, _ solana.Commitment) ([]solana.KeyedAccountInfo, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	var res []solana.KeyedAccountInfo
	for key, account := range c.ledger.accounts {
		if !bytes.Equal(account.Owner, program) || uint64(len(account.Data)) != dataSize {
			continue
		}

		cloned := account.Clone()
		res = append(res, solana.KeyedAccountInfo{
			PublicKey: copyKey(ed25519.PublicKey(key)),
			AccountInfo: solana.AccountInfo{
				Data:       cloned.Data,
				Owner:      cloned.Owner,
				Lamports:   cloned.Lamports,
				Executable: cloned.Executable,
			},
		})
	}

	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].PublicKey, res[j].PublicKey) < 0
	})

	return res, c.ledger.clock.Slot, nil
}

func (c *client) GetSlot(ctx context.Context, _ solana.Commitment) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.ledger.mu.Lock()
	defer c.ledger.mu.Unlock()

	return c.ledger.clock.Slot, nil
}
