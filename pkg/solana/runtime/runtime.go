// Package runtime defines the contract between an on-chain program and the
// ledger executing it.
package runtime

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
)

// Account is the persisted state of a ledger address.
type Account struct {
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	cloned := &Account{
		Owner:      make(ed25519.PublicKey, len(a.Owner)),
		Lamports:   a.Lamports,
		Data:       make([]byte, len(a.Data)),
		Executable: a.Executable,
	}
	copy(cloned.Owner, a.Owner)
	copy(cloned.Data, a.Data)
	return cloned
}

// AccountInfo is an account as presented to a program for a single
// instruction. Account is shared with the ledger, so writes through it are
// visible to later cross program invocations in the same transaction.
type AccountInfo struct {
	Key        ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	*Account
}

// DataIsEmpty reports whether the account holds no data, which is how
// uninitialized accounts are detected.
func (a *AccountInfo) DataIsEmpty() bool {
	return a.Account == nil || len(a.Data) == 0
}

// IsOwnedBy reports whether the account is owned by the program.
func (a *AccountInfo) IsOwnedBy(program ed25519.PublicKey) bool {
	return a.Account != nil && bytes.Equal(a.Owner, program)
}

// SignerSeeds are the seeds, bump included, of a program derived address the
// invoking program signs for.
type SignerSeeds [][]byte

// NewSignerSeeds builds signer seeds from the derivation seeds and the bump.
func NewSignerSeeds(bump uint8, seeds ...[]byte) SignerSeeds {
	res := make(SignerSeeds, 0, len(seeds)+1)
	res = append(res, seeds...)
	return append(res, []byte{bump})
}

// Invoker performs cross program invocations on behalf of a program.
//
// Accounts referenced by the instruction must have been passed to the
// calling program. A signer account must either be a signer of the calling
// instruction or be derived from one of signers under the calling program.
type Invoker interface {
	Invoke(ix solana.Instruction, signers ...SignerSeeds) error
}

// Processor is the entrypoint of a program.
type Processor interface {
	Process(programID ed25519.PublicKey, accounts []*AccountInfo, data []byte, invoker Invoker) error
}

// ProcessorFunc adapts a function to a Processor.
type ProcessorFunc func(programID ed25519.PublicKey, accounts []*AccountInfo, data []byte, invoker Invoker) error

func (f ProcessorFunc) Process(programID ed25519.PublicKey, accounts []*AccountInfo, data []byte, invoker Invoker) error {
	return f(programID, accounts, data, invoker)
}
