package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"
)

const (
	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	maxRetries = 3
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// CommitmentFromString parses one of "processed", "confirmed" or "finalized".
func CommitmentFromString(s string) (Commitment, error) {
	switch s {
	case confirmationStatusProcessed:
		return CommitmentProcessed, nil
	case confirmationStatusConfirmed:
		return CommitmentConfirmed, nil
	case confirmationStatusFinalized:
		return CommitmentFinalized, nil
	default:
		return Commitment{}, errors.Errorf("unknown commitment: %q", s)
	}
}

var (
	ErrNoAccountInfo = errors.New("no account info")
)

// AccountInfo contains the Solana account information (not to be confused with a TokenAccount)
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

// KeyedAccountInfo is an AccountInfo along with the address it was loaded from.
type KeyedAccountInfo struct {
	PublicKey ed25519.PublicKey
	AccountInfo
}

// Client provides an interaction with the Solana JSON RPC API.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(context.Context, ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetAccountInfoWithSlot(context.Context, ed25519.PublicKey, Commitment) (AccountInfo, uint64, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (lamports uint64, err error)
	GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, dataSize uint64, commitment Commitment) ([]KeyedAccountInfo, uint64, error)
	GetSlot(context.Context, Commitment) (uint64, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type rpcAccountValue struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

type client struct {
	log    *logrus.Entry
	client jsonrpc.RPCClient

	newBackOff func() backoff.BackOff
}

// New returns a client using the specified endpoint.
func New(endpoint string) Client {
	return NewWithRPCOptions(endpoint, nil)
}

// NewWithRPCOptions returns a client configured with the specified RPC options.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts) Client {
	return &client{
		log:    logrus.StandardLogger().WithField("type", "solana/client"),
		client: jsonrpc.NewClientWithOpts(endpoint, opts),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 10 * time.Second
			b.RandomizationFactor = 0.1
			return backoff.WithMaxRetries(b, maxRetries)
		},
	}
}

func (c *client) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	return backoff.Retry(func() error {
		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		return c.handleRpcError(method, err)
	}, backoff.WithContext(c.newBackOff(), ctx))
}

// handleRpcError marks every error other than rate limiting and node
// failures as permanent.
func (c *client) handleRpcError(method string, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return backoff.Permanent(err)
	}
	if rpcErr.Code == 429 {
		c.log.WithField("method", method).Warn("rate limited")
		return errRateLimited
	}
	if rpcErr.Code >= 500 || rpcErr.Code == rpcNodeUnhealthyCode {
		return errServiceError
	}

	return backoff.Permanent(err)
}

func (c *client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (lamports uint64, err error) {
	if err := c.call(ctx, &lamports, "getMinimumBalanceForRentExemption", size); err != nil {
		return 0, errors.Wrapf(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) GetSlot(ctx context.Context, commitment Commitment) (slot uint64, err error) {
	// note: we have to wrap the commitment in an []interface{} otherwise the
	//       solana RPC node complains. Technically this is a violation of the
	//       JSON RPC v2.0 standard.
	if err := c.call(ctx, &slot, "getSlot", []interface{}{commitment}); err != nil {
		return 0, errors.Wrapf(err, "getSlot() failed to send request")
	}

	return slot, nil
}

func (c *client) GetAccountInfo(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (AccountInfo, error) {
	accountInfo, _, err := c.GetAccountInfoWithSlot(ctx, account, commitment)
	return accountInfo, err
}

func (c *client) GetAccountInfoWithSlot(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, slot uint64, err error) {
	var resp struct {
		Context rpcContext       `json:"context"`
		Value   *rpcAccountValue `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	if err := c.call(ctx, &resp, "getAccountInfo", base58.Encode(account[:]), rpcConfig); err != nil {
		return accountInfo, 0, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, resp.Context.Slot, ErrNoAccountInfo
	}

	accountInfo, err = resp.Value.toAccountInfo()
	if err != nil {
		return accountInfo, 0, err
	}
	return accountInfo, resp.Context.Slot, nil
}

func (c *client) GetProgramAccounts(ctx context.Context, program ed25519.PublicKey, dataSize uint64, commitment Commitment) ([]KeyedAccountInfo, uint64, error) {
	type filter struct {
		DataSize uint64 `json:"dataSize"`
	}

	config := struct {
		Commitment  string   `json:"commitment"`
		Encoding    string   `json:"encoding"`
		Filters     []filter `json:"filters"`
		WithContext bool     `json:"withContext"`
	}{
		Commitment:  commitment.Commitment,
		Encoding:    "base64",
		Filters:     []filter{{DataSize: dataSize}},
		WithContext: true,
	}

	var resp struct {
		Context rpcContext `json:"context"`
		Value   []struct {
			PubKey  string          `json:"pubkey"`
			Account rpcAccountValue `json:"account"`
		} `json:"value"`
	}
	if err := c.call(ctx, &resp, "getProgramAccounts", base58.Encode(program), config); err != nil {
		return nil, 0, errors.Wrap(err, "getProgramAccounts() failed to send request")
	}

	res := make([]KeyedAccountInfo, 0, len(resp.Value))
	for _, result := range resp.Value {
		key, err := base58.Decode(result.PubKey)
		if err != nil {
			return nil, 0, errors.Wrap(err, "invalid base58 encoded account key")
		}

		info, err := result.Account.toAccountInfo()
		if err != nil {
			return nil, 0, err
		}

		res = append(res, KeyedAccountInfo{
			PublicKey:   key,
			AccountInfo: info,
		})
	}
	return res, resp.Context.Slot, nil
}

func (v *rpcAccountValue) toAccountInfo() (AccountInfo, error) {
	var accountInfo AccountInfo
	var err error

	accountInfo.Owner, err = base58.Decode(v.Owner)
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(v.Data) == 0 {
		return accountInfo, errors.New("missing account data")
	}
	accountInfo.Data, err = base64.StdEncoding.DecodeString(v.Data[0])
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base64 encoded data")
	}

	accountInfo.Lamports = v.Lamports
	accountInfo.Executable = v.Executable

	return accountInfo, nil
}
