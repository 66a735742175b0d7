package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcHandler func(method string, params json.RawMessage) (result interface{}, rpcErr map[string]interface{})

func newTestClient(t *testing.T, handler rpcHandler) *client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int             `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := handler(req.Method, req.Params)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	c := New(server.URL).(*client)
	c.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxRetries)
	}
	return c
}

func TestCommitmentFromString(t *testing.T) {
	for _, expected := range []Commitment{CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized} {
		actual, err := CommitmentFromString(expected.Commitment)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}

	_, err := CommitmentFromString("max")
	assert.Error(t, err)
}

func TestGetAccountInfoWithSlot(t *testing.T) {
	account, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	owner, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	data := []byte{1, 2, 3, 4}

	c := newTestClient(t, func(method string, params json.RawMessage) (interface{}, map[string]interface{}) {
		assert.Equal(t, "getAccountInfo", method)

		var args []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &args))
		require.Len(t, args, 2)

		var key string
		require.NoError(t, json.Unmarshal(args[0], &key))
		if key != base58.Encode(account) {
			return map[string]interface{}{
				"context": map[string]interface{}{"slot": 99},
				"value":   nil,
			}, nil
		}

		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 100},
			"value": map[string]interface{}{
				"lamports":   12345,
				"owner":      base58.Encode(owner),
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
			},
		}, nil
	})

	info, slot, err := c.GetAccountInfoWithSlot(context.Background(), account, CommitmentConfirmed)
	require.NoError(t, err)
	assert.EqualValues(t, 100, slot)
	assert.EqualValues(t, 12345, info.Lamports)
	assert.EqualValues(t, owner, info.Owner)
	assert.Equal(t, data, info.Data)

	_, err = c.GetAccountInfo(context.Background(), owner, CommitmentConfirmed)
	assert.Equal(t, ErrNoAccountInfo, err)
}

func TestRetryOnRateLimit(t *testing.T) {
	var mu sync.Mutex
	var calls int

	c := newTestClient(t, func(method string, params json.RawMessage) (interface{}, map[string]interface{}) {
		mu.Lock()
		defer mu.Unlock()

		calls++
		if calls < 3 {
			return nil, map[string]interface{}{"code": 429, "message": "too many requests"}
		}
		return 42, nil
	})

	slot, err := c.GetSlot(context.Background(), CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 42, slot)
	assert.Equal(t, 3, calls)
}

func TestNoRetryOnPermanentError(t *testing.T) {
	var mu sync.Mutex
	var calls int

	c := newTestClient(t, func(method string, params json.RawMessage) (interface{}, map[string]interface{}) {
		mu.Lock()
		defer mu.Unlock()

		calls++
		return nil, map[string]interface{}{"code": -32602, "message": "invalid params"}
	})

	_, err := c.GetMinimumBalanceForRentExemption(context.Background(), 165)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGetProgramAccounts(t *testing.T) {
	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	keys := make([]ed25519.PublicKey, 2)
	for i := range keys {
		keys[i], _, err = ed25519.GenerateKey(nil)
		require.NoError(t, err)
	}

	c := newTestClient(t, func(method string, params json.RawMessage) (interface{}, map[string]interface{}) {
		assert.Equal(t, "getProgramAccounts", method)

		var value []interface{}
		for i, key := range keys {
			value = append(value, map[string]interface{}{
				"pubkey": base58.Encode(key),
				"account": map[string]interface{}{
					"lamports": i + 1,
					"owner":    base58.Encode(program),
					"data":     []string{base64.StdEncoding.EncodeToString([]byte{byte(i)}), "base64"},
				},
			})
		}

		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 7},
			"value":   value,
		}, nil
	})

	accounts, slot, err := c.GetProgramAccounts(context.Background(), program, 1, CommitmentFinalized)
	require.NoError(t, err)
	assert.EqualValues(t, 7, slot)
	require.Len(t, accounts, 2)
	for i, account := range accounts {
		assert.EqualValues(t, keys[i], account.PublicKey)
		assert.EqualValues(t, i+1, account.Lamports)
		assert.Equal(t, []byte{byte(i)}, account.Data)
	}
}
