package escrow

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/hashlock-escrow/pkg/testutil"
)

func TestEscrowAccount(t *testing.T) {
	assert.Equal(t, 221, EscrowAccountSize)

	account := &EscrowAccount{
		Version:      EscrowAccountVersion,
		Status:       StatusActive,
		PaymentHash:  sha256.Sum256([]byte("preimage")),
		Recipient:    testutil.NewRandomKey(t),
		Refund:       testutil.NewRandomKey(t),
		RefundAfter:  1_700_000_000,
		Mint:         testutil.NewRandomKey(t),
		NetAmount:    1_000_000,
		FeeAmount:    10_000,
		FeeBps:       100,
		FeeCollector: testutil.NewRandomKey(t),
		Vault:        testutil.NewRandomKey(t),
		Bump:         254,
	}

	data := account.Marshal()
	require.Len(t, data, EscrowAccountSize)
	assert.EqualValues(t, 2, data[0])
	assert.EqualValues(t, 0, data[1])
	assert.EqualValues(t, 254, data[220])

	var decoded EscrowAccount
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, account, &decoded)

	total, err := decoded.DepositedAmount()
	require.NoError(t, err)
	assert.EqualValues(t, 1_010_000, total)

	assert.True(t, strings.HasPrefix(decoded.String(), "EscrowAccount{version=2,status=active,"))

	assert.Equal(t, ErrInvalidAccountData, decoded.Unmarshal(data[:220]))
	assert.Equal(t, ErrInvalidAccountData, decoded.Unmarshal(append(data, 0)))

	data[1] = 3
	assert.Equal(t, ErrInvalidAccountData, decoded.Unmarshal(data))
}

func TestEscrowAccount_Transition(t *testing.T) {
	account := &EscrowAccount{
		Status:    StatusActive,
		NetAmount: 10,
		FeeAmount: 1,
	}

	require.NoError(t, account.transition(StatusRefunded))
	assert.Equal(t, StatusRefunded, account.Status)
	assert.Zero(t, account.NetAmount)
	assert.Zero(t, account.FeeAmount)

	assert.Equal(t, ErrorNotActive, account.transition(StatusClaimed))
	assert.Equal(t, ErrorNotActive, account.transition(StatusActive))
	assert.Equal(t, StatusRefunded, account.Status)
}

func TestConfigAccount(t *testing.T) {
	assert.Equal(t, 68, ConfigAccountSize)

	authority := testutil.NewRandomKey(t)
	account := &ConfigAccount{
		Version:      ConfigAccountVersion,
		Authority:    authority,
		FeeCollector: authority,
		FeeBps:       2500,
		Bump:         255,
	}

	data := account.Marshal()
	require.Len(t, data, ConfigAccountSize)
	assert.EqualValues(t, 1, data[0])
	assert.EqualValues(t, []byte{0xc4, 0x09}, data[65:67])

	var decoded ConfigAccount
	require.NoError(t, decoded.Unmarshal(data))
	assert.Equal(t, account, &decoded)
	assert.Contains(t, decoded.String(), "fee_bps=2500")

	assert.Equal(t, ErrInvalidAccountData, decoded.Unmarshal(data[:67]))
}
