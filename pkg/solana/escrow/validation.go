package escrow

import (
	"crypto/ed25519"

	"github.com/code-payments/hashlock-escrow/pkg/solana"
	"github.com/code-payments/hashlock-escrow/pkg/solana/runtime"
	"github.com/code-payments/hashlock-escrow/pkg/solana/system"
	"github.com/code-payments/hashlock-escrow/pkg/solana/token"
)

// validator runs the account assertions shared by every instruction. Each
// failed assertion is logged under the instruction's method name.
type validator struct {
	p      *Program
	method string
}

func (p *Program) validator(method string) *validator {
	return &validator{p: p, method: method}
}

func (v *validator) fail(code ErrorCode, reason string) error {
	return v.p.reject(v.method, code, reason)
}

func (v *validator) accounts(accounts []*runtime.AccountInfo, n int) error {
	if len(accounts) < n {
		return v.fail(ErrorNotEnoughAccountKeys, "not enough account keys")
	}
	return nil
}

func (v *validator) signer(info *runtime.AccountInfo, name string) error {
	if !info.IsSigner {
		return v.fail(ErrorInvalidSigner, name+" must sign")
	}
	return nil
}

func (v *validator) writable(infos ...*runtime.AccountInfo) error {
	for _, info := range infos {
		if !info.IsWritable {
			return v.fail(ErrorAccountNotWritable, "account is not writable")
		}
	}
	return nil
}

func (v *validator) program(info *runtime.AccountInfo, expected ed25519.PublicKey) error {
	if !keyEqual(info.Key, expected) {
		v.p.log.
			WithField("method", v.method).
			Debug("unexpected program account")
		return solana.InstructionErrorIncorrectProgramID
	}
	return nil
}

func (v *validator) sysvar(info *runtime.AccountInfo, expected ed25519.PublicKey) error {
	if !keyEqual(info.Key, expected) {
		return v.fail(ErrorInvalidSysvar, "unexpected sysvar account")
	}
	return nil
}

func (v *validator) rent(info *runtime.AccountInfo) (*system.Rent, error) {
	if info.Account == nil {
		return nil, v.fail(ErrorInvalidSysvar, "missing rent sysvar")
	}
	rent, err := system.RentFromAccount(info.Key, info.Data)
	if err != nil {
		return nil, v.fail(ErrorInvalidSysvar, "invalid rent sysvar")
	}
	return rent, nil
}

func (v *validator) clock(info *runtime.AccountInfo) (*system.Clock, error) {
	if info.Account == nil {
		return nil, v.fail(ErrorInvalidSysvar, "missing clock sysvar")
	}
	clock, err := system.ClockFromAccount(info.Key, info.Data)
	if err != nil {
		return nil, v.fail(ErrorInvalidSysvar, "invalid clock sysvar")
	}
	return clock, nil
}

// tokenAccount decodes an initialized SPL token account.
func (v *validator) tokenAccount(info *runtime.AccountInfo, name string) (*token.Account, error) {
	if !info.IsOwnedBy(token.ProgramKey) {
		return nil, v.fail(ErrorInvalidTokenAccount, name+" is not a token account")
	}

	var account token.Account
	if !account.Unmarshal(info.Data) {
		return nil, v.fail(ErrorInvalidTokenAccount, name+" is not an initialized token account")
	}
	return &account, nil
}

// tokenAccountFor decodes a token account and asserts its mint and owner.
func (v *validator) tokenAccountFor(info *runtime.AccountInfo, name string, owner, mint ed25519.PublicKey) (*token.Account, error) {
	account, err := v.tokenAccount(info, name)
	if err != nil {
		return nil, err
	}
	if !keyEqual(account.Mint, mint) {
		return nil, v.fail(ErrorInvalidTokenAccount, name+" mint mismatch")
	}
	if !keyEqual(account.Owner, owner) {
		return nil, v.fail(ErrorInvalidTokenAccount, name+" owner mismatch")
	}
	return account, nil
}

// config loads the config record, asserting it lives at the derived address
// and is self consistent.
func (v *validator) config(programID ed25519.PublicKey, info *runtime.AccountInfo) (*ConfigAccount, error) {
	expected, bump, err := getConfigAddress(programID)
	if err != nil || !keyEqual(expected, info.Key) {
		return nil, v.fail(ErrorInvalidConfigPda, "config address mismatch")
	}

	if info.DataIsEmpty() || !info.IsOwnedBy(programID) {
		return nil, v.fail(ErrorInvalidConfigState, "config is not initialized")
	}

	var config ConfigAccount
	if err := config.Unmarshal(info.Data); err != nil {
		return nil, v.fail(ErrorInvalidConfigState, "config failed to decode")
	}
	if config.Version != ConfigAccountVersion || config.Bump != bump {
		return nil, v.fail(ErrorInvalidConfigState, "config version or bump mismatch")
	}
	return &config, nil
}

// escrow loads the escrow record held by info.
func (v *validator) escrow(programID ed25519.PublicKey, info *runtime.AccountInfo) (*EscrowAccount, error) {
	if info.DataIsEmpty() || !info.IsOwnedBy(programID) {
		return nil, v.fail(ErrorInvalidEscrowState, "escrow is not initialized")
	}

	var escrow EscrowAccount
	if err := escrow.Unmarshal(info.Data); err != nil {
		return nil, v.fail(ErrorInvalidEscrowState, "escrow failed to decode")
	}
	if escrow.Version != EscrowAccountVersion {
		return nil, v.fail(ErrorInvalidEscrowState, "escrow version mismatch")
	}
	return &escrow, nil
}

// feeVault asserts info is the config address's token account for mint.
func (v *validator) feeVault(programID ed25519.PublicKey, info *runtime.AccountInfo, mint ed25519.PublicKey) (*token.Account, error) {
	config, _, err := getConfigAddress(programID)
	if err != nil {
		return nil, v.fail(ErrorInvalidConfigPda, "config address derivation failed")
	}

	expected, err := token.GetAssociatedAccount(config, mint)
	if err != nil || !keyEqual(expected, info.Key) {
		return nil, v.fail(ErrorInvalidFeeVaultAta, "fee vault address mismatch")
	}

	return v.tokenAccountFor(info, "fee vault", config, mint)
}
