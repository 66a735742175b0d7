package token

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount is returned when the account exists but is not
	// an initialized token account of the client's mint.
	ErrInvalidTokenAccount = errors.New("invalid token account")
)

// Client reads token accounts of a single mint over RPC.
type Client struct {
	sc   solana.Client
	mint ed25519.PublicKey
}

func NewClient(sc solana.Client, mint ed25519.PublicKey) *Client {
	return &Client{
		sc:   sc,
		mint: mint,
	}
}

// GetAccount fetches and decodes a token account, checking that it is owned
// by the token program and holds the client's mint.
func (c *Client) GetAccount(ctx context.Context, address ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	info, err := c.sc.GetAccountInfo(ctx, address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, ErrAccountNotFound
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to get token account %s", base58.Encode(address))
	}

	if !keyEqual(info.Owner, ProgramKey) {
		return nil, ErrInvalidTokenAccount
	}

	var account Account
	if !account.Unmarshal(info.Data) {
		return nil, ErrInvalidTokenAccount
	}
	if !keyEqual(c.mint, account.Mint) {
		return nil, ErrInvalidTokenAccount
	}

	return &account, nil
}

// GetBalance returns the token amount held by the account.
func (c *Client) GetBalance(ctx context.Context, address ed25519.PublicKey, commitment solana.Commitment) (uint64, error) {
	account, err := c.GetAccount(ctx, address, commitment)
	if err != nil {
		return 0, err
	}
	return account.Amount, nil
}
